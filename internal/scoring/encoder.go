package scoring

import "fmt"

// UnknownCode is the code for a value outside the trained vocabulary.
const UnknownCode = -1

// LabelEncoder holds the trained vocabulary of each categorical column.
// Codes are positions in the trained class list. It is never mutated after
// construction.
type LabelEncoder struct {
	classes map[string][]string
	codes   map[string]map[string]int
}

// NewLabelEncoder builds an encoder from column -> ordered classes.
func NewLabelEncoder(vocab map[string][]string) (*LabelEncoder, error) {
	e := &LabelEncoder{
		classes: make(map[string][]string, len(vocab)),
		codes:   make(map[string]map[string]int, len(vocab)),
	}
	for column, classes := range vocab {
		codes := make(map[string]int, len(classes))
		for i, c := range classes {
			if _, dup := codes[c]; dup {
				return nil, fmt.Errorf("duplicate class %q in column %s", c, column)
			}
			codes[c] = i
		}
		e.classes[column] = append([]string(nil), classes...)
		e.codes[column] = codes
	}
	return e, nil
}

// Classes returns a copy of the known values of a column.
func (e *LabelEncoder) Classes(column string) []string {
	return append([]string(nil), e.classes[column]...)
}

// HasColumn reports whether the encoder was trained on the column.
func (e *LabelEncoder) HasColumn(column string) bool {
	_, ok := e.codes[column]
	return ok
}

// Encode returns the trained code of value, or UnknownCode.
func (e *LabelEncoder) Encode(column, value string) int {
	if code, ok := e.codes[column][value]; ok {
		return code
	}
	return UnknownCode
}
