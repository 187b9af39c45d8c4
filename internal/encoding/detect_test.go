package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/backoffice/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "Дата;Назначение платежа;Дебет;Кредит\n05.03.2024;Оплата;150 000;\n"
	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_Windows1251(t *testing.T) {
	input := strings.Repeat(
		"Дата;Назначение платежа;Дебет;Кредит\n"+
			"05.03.2024;Оплата поставщику за продукты питания по договору;150000;\n"+
			"06.03.2024;Поступление от покупателя за товары согласно счету;;250000\n", 3)

	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, input, readAll(t, encoded))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Дата;Сумма\n")...)
	assert.Equal(t, "Дата;Сумма\n", readAll(t, input))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("Date;Amount\n"))
	require.NoError(t, err)

	assert.Equal(t, "Date;Amount\n", readAll(t, encoded))
}
