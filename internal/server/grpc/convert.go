package grpc

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/timeboard/internal/server/intake"
	"github.com/dmitrijs2005/timeboard/internal/server/models"
)

func eventValue(e models.Event) map[string]any {
	images := make([]any, len(e.Images))
	for i, img := range e.Images {
		images[i] = img
	}
	return map[string]any{
		"id":             e.ID,
		"title":          e.Title,
		"description":    e.Description,
		"date":           e.Date,
		"color":          e.Color,
		"category":       e.Category,
		"category_color": e.CategoryColor(),
		"images":         images,
	}
}

func eventsValue(events []models.Event) []any {
	out := make([]any, len(events))
	for i, e := range events {
		out[i] = eventValue(e)
	}
	return out
}

func inputFromStruct(in *structpb.Struct) models.EventInput {
	f := in.GetFields()
	input := models.EventInput{
		Title:       f["title"].GetStringValue(),
		Description: f["description"].GetStringValue(),
		Date:        f["date"].GetStringValue(),
		Color:       f["color"].GetStringValue(),
		Category:    f["category"].GetStringValue(),
	}
	for _, v := range f["images"].GetListValue().GetValues() {
		input.Images = append(input.Images, v.GetStringValue())
	}
	return input
}

// uploadsFromStruct reads "uploads": a list of {"name", "data"} objects or
// bare base64 strings.
func uploadsFromStruct(in *structpb.Struct) ([]intake.Source, error) {
	var out []intake.Source
	for i, v := range in.GetFields()["uploads"].GetListValue().GetValues() {
		name := fmt.Sprintf("upload-%d", i)
		data := v.GetStringValue()
		if obj := v.GetStructValue(); obj != nil {
			if n := obj.GetFields()["name"].GetStringValue(); n != "" {
				name = n
			}
			data = obj.GetFields()["data"].GetStringValue()
		}

		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("upload %q is not valid base64", name)
		}
		out = append(out, intake.FromBytes(name, raw))
	}
	return out, nil
}

// idFromStruct accepts the id as a number or a decimal string.
func idFromStruct(in *structpb.Struct) (int64, error) {
	v, ok := in.GetFields()["id"]
	if !ok {
		return 0, fmt.Errorf("id is required")
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if k.NumberValue != math.Trunc(k.NumberValue) || k.NumberValue <= 0 {
			return 0, fmt.Errorf("id must be a positive integer")
		}
		return int64(k.NumberValue), nil
	case *structpb.Value_StringValue:
		id, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("id must be a positive integer")
		}
		return id, nil
	default:
		return 0, fmt.Errorf("id must be a positive integer")
	}
}
