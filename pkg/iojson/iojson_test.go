package iojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "1", "name": "Acme"}))
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "2", "name": "Globex"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"id":"1","name":"Acme"}`, lines[0])
}

func TestWriteWith_MarshalFailureGoesToErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, map[string]any{"bad": make(chan int)}))

	assert.Empty(t, out.String())

	var e Error
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &e))
	assert.Equal(t, "error marshaling in iojson.Write", e.Message)
	assert.Contains(t, e.Data["json_error"], "unsupported type")
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteError(&buf, `unknown entity "x"`, map[string]any{"entity": "x"}))

	var e Error
	require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
	assert.Equal(t, `unknown entity "x"`, e.Message)
	assert.Equal(t, "x", e.Data["entity"])
}

func TestJSONError_EscapesInput(t *testing.T) {
	got := jsonError(`say "hi"`, errors.New(`bad "thing"`))
	assert.True(t, json.Valid([]byte(got)), got)
}

type recordsInput struct {
	Records []map[string]any `json:"records"`
}

func TestFileReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{name: "records", input: `{"records":[{"name":"Acme"},{"name":"Globex"}]}`, want: 2},
		{name: "empty", input: "", wantErr: "input is empty"},
		{name: "unknown key", input: `{"rows":[]}`, wantErr: `unknown field "rows"`},
		{name: "trailing data", input: `{"records":[]} {"records":[]}`, wantErr: "unexpected data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := &FileReader[recordsInput]{Stdin: strings.NewReader(tt.input)}
			got, err := fr.Read()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Records, tt.want)
		})
	}
}

func TestFileReader_Flag(t *testing.T) {
	fr := &FileReader[recordsInput]{}
	assert.Equal(t, defaultFileUsage, fr.Flag().Usage)

	fr.Usage = "records file"
	flag := fr.Flag()
	assert.Equal(t, "records file", flag.Usage)
	assert.Equal(t, []string{"f"}, flag.Aliases)
}
