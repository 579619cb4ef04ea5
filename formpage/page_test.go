package formpage_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/form-contract-tests/browser"
	"github.com/launchdarkly/form-contract-tests/fakeform"
	"github.com/launchdarkly/form-contract-tests/formpage"
	"github.com/launchdarkly/form-contract-tests/formstate"
)

const testURL = "https://form.example/parrot/"

func acceptWithAt(email string, _ formstate.Gender) bool {
	return strings.Count(email, "@") == 1 && !strings.ContainsAny(email, " '<")
}

func newPage(b fakeform.Behavior, view formpage.SuccessView) (*formpage.Page, *fakeform.Form) {
	if b.Accept == nil {
		b.Accept = acceptWithAt
	}
	form := fakeform.New(b)
	page := formpage.New(form, testURL, formpage.Options{
		SuccessView:  view,
		WaitTimeout:  time.Millisecond * 200,
		PollInterval: time.Millisecond * 5,
	})
	return page, form
}

func TestOpenLeavesFormEmpty(t *testing.T) {
	ctx := context.Background()
	page, form := newPage(fakeform.Behavior{}, formpage.EchoedEmail)
	require.NoError(t, page.Open(ctx))

	obs, err := page.Observe(ctx)
	require.NoError(t, err)
	assert.NoError(t, formstate.State{Kind: formstate.Empty}.Check(obs))
	assert.Equal(t, []string{"navigate " + testURL}, form.History())
}

func TestSubmitAcceptedEmail(t *testing.T) {
	ctx := context.Background()
	page, form := newPage(fakeform.Behavior{}, formpage.BothViews)
	require.NoError(t, page.Open(ctx))
	require.NoError(t, page.EnterEmail(ctx, "kontur_course_hi@mail.ru"))
	require.NoError(t, page.Submit(ctx))

	echoed, err := page.ReadEchoedEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kontur_course_hi@mail.ru", echoed)

	result, err := page.ReadResultText(ctx)
	require.NoError(t, err)
	assert.Contains(t, result, "Хорошо, мы пришлём имя")

	visible, err := page.IsResetAffordanceVisible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)
	assert.Equal(t, "kontur_course_hi@mail.ru", form.Submitted())
}

func TestSubmitRejectedEmail(t *testing.T) {
	ctx := context.Background()
	page, _ := newPage(fakeform.Behavior{}, formpage.EchoedEmail)
	require.NoError(t, page.Open(ctx))
	require.NoError(t, page.EnterEmail(ctx, ""))
	require.NoError(t, page.Submit(ctx))

	text, err := page.ReadErrorText(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "Введите email")

	obs, err := page.Observe(ctx)
	require.NoError(t, err)
	assert.True(t, obs.ErrorDisplayed)
	assert.True(t, obs.InputDisplayed)
	assert.False(t, obs.ResultDisplayed)
}

func TestSubmitWaitsForSlowPage(t *testing.T) {
	ctx := context.Background()
	page, _ := newPage(fakeform.Behavior{ReactAfter: 5}, formpage.EchoedEmail)
	require.NoError(t, page.Open(ctx))
	require.NoError(t, page.EnterEmail(ctx, "a@b.co"))
	require.NoError(t, page.Submit(ctx))

	echoed, err := page.ReadEchoedEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", echoed)
}

func TestSelectGender(t *testing.T) {
	ctx := context.Background()
	page, form := newPage(fakeform.Behavior{}, formpage.EchoedEmail)
	require.NoError(t, page.Open(ctx))
	for _, g := range []formstate.Gender{formstate.Girl, formstate.Boy, formstate.Girl} {
		require.NoError(t, page.SelectGender(ctx, g))
	}
	assert.Equal(t, formstate.Girl, form.Gender())
}

func TestClickAnotherEmailClearsInput(t *testing.T) {
	ctx := context.Background()
	page, _ := newPage(fakeform.Behavior{}, formpage.EchoedEmail)
	require.NoError(t, page.Open(ctx))
	require.NoError(t, page.EnterEmail(ctx, "a@b.co"))
	require.NoError(t, page.Submit(ctx))
	require.NoError(t, page.ClickAnotherEmail(ctx))

	value, err := page.ReadEmailInputValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", value)

	visible, err := page.IsResetAffordanceVisible(ctx)
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestClickAnotherEmailTimesOutWhenLinkStays(t *testing.T) {
	ctx := context.Background()
	page, _ := newPage(fakeform.Behavior{KeepResetLinkAfterReset: true}, formpage.EchoedEmail)
	require.NoError(t, page.Open(ctx))
	require.NoError(t, page.EnterEmail(ctx, "a@b.co"))
	require.NoError(t, page.Submit(ctx))

	err := page.ClickAnotherEmail(ctx)
	var te *formpage.TimeoutError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, browser.ID("anotherEmail"), te.Selector)
	assert.Equal(t, formstate.Empty, te.State)
}

func TestMissingElementIsElementNotFound(t *testing.T) {
	ctx := context.Background()
	page, _ := newPage(fakeform.Behavior{Missing: []browser.Selector{browser.Class("your-email")}}, formpage.EchoedEmail)
	require.NoError(t, page.Open(ctx))
	require.NoError(t, page.EnterEmail(ctx, "a@b.co"))

	err := page.Submit(ctx)
	var nf *formpage.ElementNotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, browser.Class("your-email"), nf.Selector)
	assert.Equal(t, formstate.Editing, nf.State)
	assert.True(t, errors.Is(err, browser.ErrNotFound))
	assert.Contains(t, err.Error(), `class="your-email"`)
}

func TestHiddenElementTimesOut(t *testing.T) {
	ctx := context.Background()
	page, _ := newPage(fakeform.Behavior{}, formpage.EchoedEmail)
	require.NoError(t, page.Open(ctx))

	_, err := page.ReadErrorText(ctx)
	var te *formpage.TimeoutError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, "element to be displayed", te.Condition)
}

func TestSessionFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	broken := errors.New("browser crashed")
	page, _ := newPage(fakeform.Behavior{FindError: broken}, formpage.EchoedEmail)

	start := time.Now()
	err := page.Open(ctx)
	assert.True(t, errors.Is(err, broken))
	assert.Less(t, time.Since(start), time.Millisecond*150)
}

func TestCancelledContextStopsWait(t *testing.T) {
	page, _ := newPage(fakeform.Behavior{}, formpage.EchoedEmail)
	require.NoError(t, page.Open(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := page.ReadErrorText(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestParseSuccessView(t *testing.T) {
	v, err := formpage.ParseSuccessView("")
	require.NoError(t, err)
	assert.Equal(t, formpage.EchoedEmail, v)

	v, err = formpage.ParseSuccessView("result-text")
	require.NoError(t, err)
	assert.True(t, v.ShowsResultText())
	assert.False(t, v.ShowsEchoedEmail())

	_, err = formpage.ParseSuccessView("banner")
	assert.Error(t, err)
}

func TestSelectorsWithDefaults(t *testing.T) {
	s := formpage.Selectors{FormError: browser.CSS("div.error")}.WithDefaults()
	assert.Equal(t, browser.CSS("div.error"), s.FormError)
	assert.Equal(t, browser.Name("email"), s.EmailInput)
	assert.NoError(t, s.Validate())

	s.Submit = browser.Selector{By: "xpath", Value: "//button"}
	assert.Error(t, s.Validate())
}
