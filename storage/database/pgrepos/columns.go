package pgrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func jsonValue(v interface{}) (null.JSON, error) {
	var j null.JSON
	if err := j.Marshal(v); err != nil {
		return null.JSON{}, err
	}
	return j, nil
}

func stringValue(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case user.Role:
		return string(s), nil
	case school.ResourceType:
		return string(s), nil
	}
	return "", errors.Errorf("unexpected %T for a text column", v)
}

func textColumn(name string) column {
	return column{name: name, encode: func(v interface{}) (interface{}, error) {
		return stringValue(v)
	}}
}

func nullTextColumn(name string) column {
	return column{name: name, encode: func(v interface{}) (interface{}, error) {
		s, err := stringValue(v)
		if err != nil {
			return nil, err
		}
		return nullString(s), nil
	}}
}

func plainColumn(name string) column {
	return column{name: name, encode: func(v interface{}) (interface{}, error) { return v, nil }}
}

func jsonColumn(name string) column {
	return column{name: name, encode: func(v interface{}) (interface{}, error) {
		return jsonValue(v)
	}}
}

var optionsColumn = column{name: "options", encode: func(v interface{}) (interface{}, error) {
	opts, ok := v.([]school.PollOption)
	if !ok {
		return nil, errors.Errorf("unexpected %T for poll options", v)
	}
	return encodeOptions(opts)
}}

var votersColumn = column{name: "voted_user_ids", encode: func(v interface{}) (interface{}, error) {
	ids, ok := v.([]string)
	if !ok {
		return nil, errors.Errorf("unexpected %T for voter ids", v)
	}
	return voters(ids), nil
}}

// options is never NULL on the wire
func encodeOptions(opts []school.PollOption) (null.JSON, error) {
	if opts == nil {
		opts = []school.PollOption{}
	}
	return jsonValue(opts)
}

func voters(ids []string) pq.StringArray {
	if ids == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(ids)
}
