package utils

import (
	"bytes"
	"encoding/json"
)

// MarshalMap сериализует map в канонический JSON (ключи сортируются).
func MarshalMap(data interface{}) ([]byte, error) {
	return json.Marshal(data)
}

// UnmarshalMap десериализует JSON в map, корректно обрабатывая пустые и null данные.
func UnmarshalMap(data []byte, v interface{}) error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		switch m := v.(type) {
		case *map[string]interface{}:
			*m = make(map[string]interface{})
		case *map[string]int:
			*m = make(map[string]int)
		default:
		}
		return nil
	}
	return json.Unmarshal(data, v)
}

// DecodeStrict декодирует JSON-данные в out, запрещая неизвестные поля.
// Используется для закрытых форм ответов модели.
func DecodeStrict(data []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
