package tabularcore

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReadAll_Simple(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"single row single field", "hello\n", [][]string{{"hello"}}},
		{"single row multiple fields", "a,b,c\n", [][]string{{"a", "b", "c"}}},
		{"multiple rows", "a,b,c\n1,2,3\nx,y,z\n", [][]string{{"a", "b", "c"}, {"1", "2", "3"}, {"x", "y", "z"}}},
		{"quoted field with comma", `"a,b",c` + "\n", [][]string{{"a,b", "c"}}},
		{"crlf terminated", "a,b\r\nc,d\r\n", [][]string{{"a", "b"}, {"c", "d"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tc.input))
			got, err := r.ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReader_Read_EOF(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\n"))
	_, err := r.Read()
	require.NoError(t, err)
	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_FieldsPerRecordMismatch(t *testing.T) {
	r := NewReader(strings.NewReader("a,b,c\nx,y\n"))
	r.FieldsPerRecord = 0
	_, err := r.ReadAll()
	assert.Error(t, err)
}

func TestReader_FieldsPerRecordNegativeAllowsVariable(t *testing.T) {
	r := NewReader(strings.NewReader("a,b,c\nx,y\n"))
	r.FieldsPerRecord = -1
	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"x", "y"}}, got)
}

func TestReader_CommentLinesSkipped(t *testing.T) {
	r := NewReader(strings.NewReader("# a comment\na,b\n# another\nc,d\n"))
	r.Comment = '#'
	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, got)
}

func TestReader_TrimLeadingSpace(t *testing.T) {
	r := NewReader(strings.NewReader(" a, b,c\n"))
	r.TrimLeadingSpace = true
	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, got)
}

func TestReader_FieldPos(t *testing.T) {
	r := NewReader(strings.NewReader("a,bb,ccc\n"))
	_, err := r.Read()
	require.NoError(t, err)
	line, col := r.FieldPos(1)
	assert.Equal(t, 1, line)
	assert.Equal(t, 3, col)
}

func TestReader_SkipBOM(t *testing.T) {
	input := "\xEF\xBB\xBFa,b\n"
	r := NewReaderWithOptions(strings.NewReader(input), ReaderOptions{SkipBOM: true})
	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, got)
}

func TestReader_ReadAll_GrowsScratchBeyondInitialCapacity(t *testing.T) {
	const cols = 200
	fields := make([]string, cols)
	for i := range fields {
		fields[i] = strings.Repeat("x", 1)
	}
	input := strings.Join(fields, ",") + "\n"

	r := NewReader(strings.NewReader(input))
	got, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0], cols)
}

func TestReader_InputTooLarge(t *testing.T) {
	r := NewReaderWithOptions(strings.NewReader("aaaaaaaaaa\n"), ReaderOptions{MaxInputSize: 4})
	_, err := r.ReadAll()
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
