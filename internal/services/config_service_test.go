// internal/services/config_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryPact/ScenePactMCP/internal/config"
)

func initTestConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_DIR", t.TempDir())
	require.NoError(t, config.InitConfig(dir))
}

func TestConfigServiceGetSettings(t *testing.T) {
	initTestConfig(t)
	svc := NewConfigService(NewLLMServiceWithProvider(nil))

	settings := svc.GetSettings()
	assert.False(t, settings.LLMReady)
	assert.Equal(t, 80, settings.Validator.PassScore)
	assert.Equal(t, 3000, settings.Splitter.SplitThresholdWords)
}

func TestConfigServiceUpdateSettingsRebuildsServices(t *testing.T) {
	initTestConfig(t)
	svc := NewConfigService(NewLLMServiceWithProvider(nil))

	oldValidator := svc.Validator()
	oldSplitter := svc.Splitter()

	tunables := config.DefaultValidatorTunables()
	tunables.PassScore = 90
	settings, err := svc.UpdateSettings(&UpdateSettingsRequest{Validator: &tunables})
	require.NoError(t, err)

	assert.Equal(t, 90, settings.Validator.PassScore)
	// 服务实例被整体换掉，而不是就地修改
	assert.NotSame(t, oldValidator, svc.Validator())
	assert.NotSame(t, oldSplitter, svc.Splitter())
}

func TestConfigServiceUpdateSettingsNoChanges(t *testing.T) {
	initTestConfig(t)
	svc := NewConfigService(NewLLMServiceWithProvider(nil))

	oldValidator := svc.Validator()
	settings, err := svc.UpdateSettings(&UpdateSettingsRequest{})
	require.NoError(t, err)

	assert.NotNil(t, settings)
	assert.Same(t, oldValidator, svc.Validator())
}
