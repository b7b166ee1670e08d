package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/openswoop/taucourses/pkg/scrape"
)

type CsvGroup struct {
	Course   string `csv:"course"`
	Name     string `csv:"name"`
	Group    string `csv:"group"`
	Faculty  string `csv:"faculty"`
	Lecturer string `csv:"lecturer"`
}

func toCsvGroup(g scrape.GroupInfo) CsvGroup {
	lecturer := ""
	if g.Lecturer.Valid {
		lecturer = g.Lecturer.StringVal
	}
	return CsvGroup{g.Id, g.Name, g.Group, g.Faculty, lecturer}
}

func WriteCsv(in interface{}, fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(in, file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", fileName, err)
	}
	return file.Close()
}

// EncodeJSON writes v on one line with ", " and ": " separators, the layout
// of the existing catalog files, leaving non-ASCII text unescaped.
func EncodeJSON(w io.Writer, v interface{}) error {
	data, err := marshalJSON(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteJSON is EncodeJSON into a file.
func WriteJSON(v interface{}, fileName string) error {
	data, err := marshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", fileName, err)
	}
	return os.WriteFile(fileName, data, 0644)
}

func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return spaceSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// spaceSeparators puts a space after every comma and colon of compact JSON
// that is not inside a string.
func spaceSeparators(compact []byte) []byte {
	out := make([]byte, 0, len(compact)+len(compact)/8)
	inString, escaped := false, false
	for _, b := range compact {
		out = append(out, b)
		switch {
		case escaped:
			escaped = false
		case inString && b == '\\':
			escaped = true
		case b == '"':
			inString = !inString
		case !inString && (b == ',' || b == ':'):
			out = append(out, ' ')
		}
	}
	return out
}
