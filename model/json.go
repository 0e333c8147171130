package model

import (
	gojson "github.com/goccy/go-json"
)

// jsonDataset mirrors Dataset for JSON output without the parent link.
type jsonDataset struct {
	Name       string           `json:"name"`
	Dimensions []*jsonDimension `json:"dimensions,omitempty"`
	Variables  []*jsonVariable  `json:"variables,omitempty"`
	Attributes []*jsonAttribute `json:"attributes,omitempty"`
	Groups     []*jsonDataset   `json:"groups,omitempty"`
}

type jsonDimension struct {
	Name      string `json:"name"`
	Length    int64  `json:"length"`
	Unlimited bool   `json:"unlimited,omitempty"`
}

type jsonVariable struct {
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Dims       []string         `json:"dimensions,omitempty"`
	Attributes []*jsonAttribute `json:"attributes,omitempty"`
	Data       []any            `json:"data,omitempty"`
}

type jsonAttribute struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// MarshalJSON renders the dataset as JSON. Values are emitted as their
// native Go representations; scalar attributes collapse to a single value.
func (ds *Dataset) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(ds.toJSON())
}

func (ds *Dataset) toJSON() *jsonDataset {
	out := &jsonDataset{Name: ds.Name}

	for _, d := range ds.Dimensions {
		out.Dimensions = append(out.Dimensions, &jsonDimension{
			Name:      d.Name,
			Length:    d.Length,
			Unlimited: d.Unlimited,
		})
	}

	for _, v := range ds.Variables {
		jv := &jsonVariable{Name: v.Name, Type: v.Type.String()}

		for _, d := range v.Dims {
			jv.Dims = append(jv.Dims, d.Name)
		}

		for _, a := range v.Attributes {
			jv.Attributes = append(jv.Attributes, attrJSON(a))
		}

		for _, val := range v.Data {
			jv.Data = append(jv.Data, val.Native())
		}

		out.Variables = append(out.Variables, jv)
	}

	for _, a := range ds.Attributes {
		out.Attributes = append(out.Attributes, attrJSON(a))
	}

	for _, g := range ds.Groups {
		out.Groups = append(out.Groups, g.toJSON())
	}

	return out
}

func attrJSON(a *Attribute) *jsonAttribute {
	out := &jsonAttribute{Name: a.Name, Type: a.Type.String()}

	if a.Scalar() {
		out.Value = a.Values[0].Native()

		return out
	}

	values := make([]any, len(a.Values))
	for i, v := range a.Values {
		values[i] = v.Native()
	}

	out.Value = values

	return out
}
