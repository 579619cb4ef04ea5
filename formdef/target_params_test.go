package formdef

import (
	"testing"
	"time"

	"github.com/launchdarkly/form-contract-tests/browser"
	"github.com/launchdarkly/form-contract-tests/formpage"

	helpers "github.com/launchdarkly/go-test-helpers/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestReadTargetParams(t *testing.T) {
	data := []byte(`{
		"url": "https://example.com/parrot",
		"selectors": {"submit": {"by": "css", "value": "button[type=submit]"}},
		"successView": "both",
		"waitTimeoutMs": 2000,
		"scenarioTimeoutMs": 10000,
		"parallel": 3,
		"browser": {"showWindow": true, "windowWidth": 800, "flags": ["no-sandbox"]}
	}`)
	helpers.WithTempFileData(data, func(path string) {
		p, err := ReadTargetParams(path)
		require.NoError(t, err)
		require.NoError(t, p.Validate())

		assert.Equal(t, "https://example.com/parrot", p.URL)
		assert.Equal(t, ldvalue.NewOptionalInt(3), p.Parallel)

		opts := p.PageOptions()
		assert.Equal(t, formpage.BothViews, opts.SuccessView)
		assert.Equal(t, 2*time.Second, opts.WaitTimeout)
		assert.Equal(t, formpage.DefaultPollInterval, opts.PollInterval)
		assert.Equal(t, browser.CSS("button[type=submit]"), opts.Selectors.Submit)
		assert.Equal(t, formpage.DefaultSelectors().EmailInput, opts.Selectors.EmailInput)

		assert.Equal(t, 10*time.Second, p.ScenarioTimeout(time.Minute))

		chrome := p.Browser.ChromeOptions()
		assert.False(t, chrome.Headless)
		assert.Equal(t, 800, chrome.WindowWidth)
		assert.Equal(t, defaultWindowHeight, chrome.WindowHeight)
		assert.Equal(t, map[string]interface{}{"no-sandbox": true}, chrome.Flags)
	})
}

func TestMinimalTargetParamsUseDefaults(t *testing.T) {
	p, err := ParseTargetParams([]byte(`{"url": "http://localhost:3000/"}`))
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	opts := p.PageOptions()
	assert.Equal(t, formpage.EchoedEmail, opts.SuccessView)
	assert.Equal(t, formpage.DefaultSelectors(), opts.Selectors)
	assert.Equal(t, formpage.DefaultWaitTimeout, opts.WaitTimeout)
	assert.Equal(t, time.Minute, p.ScenarioTimeout(time.Minute))

	chrome := p.Browser.ChromeOptions()
	assert.True(t, chrome.Headless)
	assert.Nil(t, chrome.Flags)
}

func TestReadTargetParamsErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ReadTargetParams("/no/such/target.json")
		assert.ErrorContains(t, err, "cannot read target configuration")
	})
	t.Run("unknown field", func(t *testing.T) {
		helpers.WithTempFileData([]byte(`{"url": "http://x", "timeout": 5}`), func(path string) {
			_, err := ReadTargetParams(path)
			assert.ErrorContains(t, err, "invalid target configuration")
		})
	})
}

func TestValidate(t *testing.T) {
	for _, p := range []struct {
		name    string
		json    string
		message string
	}{
		{"no URL", `{}`, "url is required"},
		{"relative URL", `{"url": "/parrot"}`, "is not an http"},
		{"bad success view", `{"url": "http://x", "successView": "popup"}`, "unknown success view"},
		{"bad selector", `{"url": "http://x", "selectors": {"submit": {"by": "xpath", "value": "//b"}}}`, "selector submit"},
		{"zero timeout", `{"url": "http://x", "waitTimeoutMs": 0}`, "waitTimeoutMs must be positive"},
		{"negative width", `{"url": "http://x", "browser": {"windowWidth": -1}}`, "browser.windowWidth must be positive"},
	} {
		t.Run(p.name, func(t *testing.T) {
			params, err := ParseTargetParams([]byte(p.json))
			require.NoError(t, err)
			assert.ErrorContains(t, params.Validate(), p.message)
		})
	}
}
