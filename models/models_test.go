package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/schema"
)

// A real SQL date column scans back through time.Time on the postgres driver,
// so the YYYY-MM-DD strings would round-trip as RFC3339 timestamps and string
// equality against them would break. The fields must migrate as plain text.
func TestDateFieldsMigrateAsText(t *testing.T) {
	cases := []struct {
		model  interface{}
		fields []string
	}{
		{&WeatherRequest{}, []string{"RequestedStartDate", "RequestedEndDate"}},
		{&WeatherSnapshot{}, []string{"SnapshotDate"}},
	}

	for _, tc := range cases {
		parsed, err := schema.Parse(tc.model, &sync.Map{}, schema.NamingStrategy{})
		assert.NoError(t, err)

		for _, name := range tc.fields {
			field := parsed.LookUpField(name)
			if !assert.NotNil(t, field, "field %s not found", name) {
				continue
			}
			assert.Equal(t, schema.String, field.DataType, "field %s", name)
			assert.Empty(t, field.TagSettings["TYPE"], "field %s must not override the column type", name)
		}
	}
}
