package resources

import (
	"testing"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/stretchr/testify/assert"
)

func Test_NewLogGroup(t *testing.T) {
	tests := []struct {
		name      string
		params    LogGroupParams
		wantName  string
		wantDays  any
		wantError bool
	}{
		{
			name:     "one year",
			params:   LogGroupParams{LogGroupName: "/ecs/api-ecs-log", RetentionInDays: 365},
			wantName: "/ecs/api-ecs-log",
			wantDays: 365,
		},
		{
			name:     "never expire",
			params:   LogGroupParams{LogGroupName: "/ecs/app log"},
			wantName: "/ecs/app_log",
		},
		{
			name:      "unsupported retention",
			params:    LogGroupParams{LogGroupName: "/ecs/x", RetentionInDays: 100},
			wantError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			lg, err := NewLogGroup(construct.NewStack("test").Root(), "LogGroup", tt.params)
			if tt.wantError {
				assert.Error(err)
				return
			}
			if assert.NoError(err) {
				assert.Equal(tt.wantName, lg.Properties["LogGroupName"])
				assert.Equal(tt.wantDays, lg.Properties["RetentionInDays"])
			}
		})
	}
}
