package geoapify

import (
	"encoding/json"
	"strconv"
	"strings"
)

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties       `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

type properties struct {
	Lat         *float64    `json:"lat"`
	Lon         *float64    `json:"lon"`
	PlaceID     string      `json:"place_id"`
	Formatted   string      `json:"formatted"`
	Name        string      `json:"name"`
	FeatureType string      `json:"feature_type"`
	ResultType  string      `json:"result_type"`
	Categories  []string    `json:"categories"`
	AdminLevel  flexibleInt `json:"admin_level"`
	Datasource  *datasource `json:"datasource"`
}

type datasource struct {
	Raw struct {
		AdminLevel flexibleInt `json:"admin_level"`
	} `json:"raw"`
}

// geometryHeader нужен, чтобы сохранить тип геометрии, которую go-geom не разобрал
type geometryHeader struct {
	Type string `json:"type"`
}

// flexibleInt принимает и число, и строку ("8"); все остальное - 0
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexibleInt(n)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexibleInt(int(v))
		return nil
	}
	*f = 0
	return nil
}

// decodeFeatures понимает и FeatureCollection, и голый массив объектов
func decodeFeatures(body []byte) ([]feature, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var list []feature
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, err
	}
	return fc.Features, nil
}
