package export

import (
	"io"

	"chat-harvester/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteJSON writes records as a JSON array indented by two spaces.
func WriteJSON(w io.Writer, records []entity.ResultRecord) error {
	if records == nil {
		records = []entity.ResultRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
