package classify

import (
	"strings"
	"testing"
)

const translateBody = `{
	"eventCode": "TRANSLATE",
	"projectId": "p1",
	"taskId": "t1",
	"tenantId": "tenant42",
	"sourceLocale": "en-US",
	"targetLocale": "fr-FR"
}`

func TestClassifyTranslate(t *testing.T) {
	task, err := Classify("e1", []byte(translateBody))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if task.Kind != Translate {
		t.Fatalf("Kind = %v, want Translate", task.Kind)
	}
	if task.OriginEventID != "e1" || task.ProjectID != "p1" || task.TaskID != "t1" {
		t.Fatalf("task = %+v", task)
	}
	if task.SourceLocale != "en-US" || task.TargetLocale != "fr-FR" {
		t.Fatalf("locales = %q -> %q", task.SourceLocale, task.TargetLocale)
	}
}

func TestClassifyReTranslate(t *testing.T) {
	body := `{
		"eventCode": "RE_TRANSLATE",
		"projectId": "p1",
		"taskId": "t1",
		"tenantId": "tenant42",
		"sourceLocale": "en-US",
		"targetLocale": "de-DE",
		"assetName": "home.xlf",
		"assetUrl": "https://store/tenant42/en/home.xlf"
	}`
	task, err := Classify("e2", []byte(body))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if task.Kind != ReTranslate {
		t.Fatalf("Kind = %v, want ReTranslate", task.Kind)
	}
	if task.AssetName != "home.xlf" || task.AssetURL == "" {
		t.Fatalf("task = %+v", task)
	}
}

func TestClassifyReTranslateMissingAssetIgnored(t *testing.T) {
	body := `{
		"eventCode": "RE_TRANSLATE",
		"projectId": "p1",
		"taskId": "t1",
		"tenantId": "tenant42",
		"sourceLocale": "en-US",
		"targetLocale": "de-DE"
	}`
	task, err := Classify("e3", []byte(body))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if task.Kind != Ignored {
		t.Fatalf("Kind = %v, want Ignored", task.Kind)
	}
	if !strings.Contains(err.Error(), "assetName") && !strings.Contains(err.Error(), "assetUrl") {
		t.Fatalf("err = %v, want mention of asset fields", err)
	}
}

func TestClassifyUnknownCodeIgnoredWithoutError(t *testing.T) {
	task, err := Classify("e4", []byte(`{"eventCode":"TASK_CREATED","taskId":"t1"}`))
	if err != nil {
		t.Fatalf("unknown codes are not errors, got %v", err)
	}
	if task.Kind != Ignored {
		t.Fatalf("Kind = %v, want Ignored", task.Kind)
	}
	if task.OriginEventID != "e4" {
		t.Fatalf("OriginEventID = %q", task.OriginEventID)
	}
}

func TestClassifyMalformedJSONIgnoredWithError(t *testing.T) {
	task, err := Classify("e5", []byte(`{not json`))
	if err == nil {
		t.Fatal("expected decode error")
	}
	if task.Kind != Ignored {
		t.Fatalf("Kind = %v, want Ignored", task.Kind)
	}
}

func TestClassifyMissingRequiredFieldIgnored(t *testing.T) {
	body := `{"eventCode":"TRANSLATE","projectId":"p1","taskId":"t1"}`
	task, err := Classify("e6", []byte(body))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if task.Kind != Ignored {
		t.Fatalf("Kind = %v, want Ignored", task.Kind)
	}
}

func TestClassifyKeepsWireLocales(t *testing.T) {
	// GCS matches asset URLs against the tags it emitted, so rewriting
	// "en_us" to "en-US" (or legacy tags like "tl" to "fil") would break
	// every lookup for tenants that send non-canonical tags
	body := `{
		"eventCode": "TRANSLATE",
		"projectId": "p1",
		"taskId": "t1",
		"tenantId": "tenant42",
		"sourceLocale": "en_us",
		"targetLocale": "tl"
	}`
	task, err := Classify("e7", []byte(body))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if task.SourceLocale != "en_us" || task.TargetLocale != "tl" {
		t.Fatalf("locales = %q -> %q, want verbatim", task.SourceLocale, task.TargetLocale)
	}
}

func TestKindString(t *testing.T) {
	if Translate.String() != "TRANSLATE" || ReTranslate.String() != "RE_TRANSLATE" || Ignored.String() != "IGNORED" {
		t.Fatal("Kind strings drifted")
	}
}
