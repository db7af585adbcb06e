// internal/api/schemas.go
package api

import (
	"strings"

	wferrors "hiring-workflow/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// Request schemas, validated before any struct decoding so malformed input
// is rejected with a single consistent error shape.
var (
	statusChangeSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"status"},
		"properties": map[string]interface{}{
			"status": map[string]interface{}{"type": "string", "minLength": 1},
			"notes":  map[string]interface{}{"type": "string"},
		},
		"additionalProperties": false,
	}

	scheduleInterviewSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"applicationId", "type", "scheduledDate"},
		"properties": map[string]interface{}{
			"applicationId": map[string]interface{}{"type": "string", "minLength": 1},
			"type":          map[string]interface{}{"type": "string", "minLength": 1},
			"scheduledDate": map[string]interface{}{"type": "string", "minLength": 1},
			"location":      map[string]interface{}{"type": "string"},
			"meetingLink":   map[string]interface{}{"type": "string"},
			"interviewers": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"notes": map[string]interface{}{"type": "string"},
		},
		"additionalProperties": false,
	}

	interviewStatusSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"status"},
		"properties": map[string]interface{}{
			"status": map[string]interface{}{"type": "string", "minLength": 1},
			"notes":  map[string]interface{}{"type": "string"},
		},
		"additionalProperties": false,
	}

	makeOfferSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"applicationId", "salary", "startDate"},
		"properties": map[string]interface{}{
			"applicationId": map[string]interface{}{"type": "string", "minLength": 1},
			"salary":        map[string]interface{}{"type": "integer", "minimum": 1},
			"startDate":     map[string]interface{}{"type": "string", "minLength": 1},
			"benefits":      map[string]interface{}{"type": "string"},
			"conditions":    map[string]interface{}{"type": "string"},
			"notes":         map[string]interface{}{"type": "string"},
		},
		"additionalProperties": false,
	}

	offerResponseSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"response"},
		"properties": map[string]interface{}{
			"response": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"accepted", "rejected", "negotiating"},
			},
			"notes": map[string]interface{}{"type": "string"},
		},
		"additionalProperties": false,
	}
)

func validateBody(schema map[string]interface{}, body []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return wferrors.NewValidationFailedError("invalid JSON body: " + err.Error())
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return wferrors.NewValidationFailedError(strings.Join(errs, "; "))
	}

	return nil
}
