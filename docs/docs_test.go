package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestRegisteredDocument(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc error = %v", err)
	}

	var doc struct {
		Swagger string                     `json:"swagger"`
		Info    struct{ Title string }     `json:"info"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	if doc.Swagger != "2.0" || doc.Info.Title != SwaggerInfo.Title {
		t.Errorf("swagger = %q, title = %q", doc.Swagger, doc.Info.Title)
	}
	for _, path := range []string{"/auth/login", "/competitions/{competitionID}/scores", "/leagues/{leagueID}/standings/calculate"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("path %s is not documented", path)
		}
	}
}
