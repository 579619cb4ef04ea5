package formstate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/form-contract-tests/corpus"
)

func testMachine() *Machine {
	return NewMachine(corpus.MustNew(
		corpus.NewCase(corpus.BaselineValid, "good@mail.ru", "good"),
		corpus.NewCase(corpus.BaselineInvalid, "", "empty"),
		corpus.NewCase(corpus.BaselineInvalid, "bad@", "bad"),
	))
}

func requireState(t *testing.T, expected, actual State) {
	t.Helper()
	if diff := cmp.Diff(expected, actual); diff != "" {
		require.Fail(t, "unexpected state", "(-expected +actual):\n%s", diff)
	}
}

func TestSubmitAcceptedEmail(t *testing.T) {
	m := testMachine()
	s, err := m.EnterEmail(m.Initial(), "good@mail.ru")
	require.NoError(t, err)
	requireState(t, State{Kind: Editing, Email: "good@mail.ru", Gender: Boy}, s)

	s, err = m.Submit(s)
	require.NoError(t, err)
	requireState(t, State{Kind: SubmittedOk, Email: "good@mail.ru", Gender: Boy}, s)
}

func TestSubmitRejectedEmailChoosesFamily(t *testing.T) {
	m := testMachine()

	s, err := m.EnterEmail(m.Initial(), "")
	require.NoError(t, err)
	s, err = m.Submit(s)
	require.NoError(t, err)
	assert.Equal(t, SubmittedError, s.Kind)
	assert.Equal(t, EnterEmail, s.Family)
	assert.Equal(t, "Введите email", s.Family.Literal())

	s, err = m.EnterEmail(m.Initial(), "bad@")
	require.NoError(t, err)
	s, err = m.Submit(s)
	require.NoError(t, err)
	assert.Equal(t, IncorrectEmail, s.Family)
	assert.Equal(t, "Некорректный email", s.Family.Literal())
}

func TestSubmitFromEmptyIsEmptyEmail(t *testing.T) {
	m := testMachine()
	s, err := m.Submit(m.Initial())
	require.NoError(t, err)
	assert.Equal(t, EnterEmail, s.Family)
}

func TestKeystrokesAppend(t *testing.T) {
	m := testMachine()
	s, _ := m.EnterEmail(m.Initial(), "good@")
	s, _ = m.EnterEmail(s, "mail.ru")
	assert.Equal(t, "good@mail.ru", s.Email)
}

func TestGenderDoesNotAffectOutcome(t *testing.T) {
	m := testMachine()
	for _, toggles := range [][]Gender{
		nil,
		{Girl},
		{Boy, Girl, Boy, Girl},
		{Girl, Girl, Boy},
	} {
		s := m.Initial()
		var err error
		for _, g := range toggles {
			s, err = m.SelectGender(s, g)
			require.NoError(t, err)
		}
		s, err = m.EnterEmail(s, "good@mail.ru")
		require.NoError(t, err)
		if len(toggles) > 0 {
			assert.Equal(t, toggles[len(toggles)-1], s.Gender, "last selection wins")
		}
		s, err = m.Submit(s)
		require.NoError(t, err)
		assert.Equal(t, SubmittedOk, s.Kind)
		assert.Equal(t, "good@mail.ru", s.Email)
	}
}

func TestAnotherEmailReturnsToInitialState(t *testing.T) {
	m := testMachine()
	s, _ := m.SelectGender(m.Initial(), Girl)
	s, _ = m.EnterEmail(s, "good@mail.ru")
	s, _ = m.Submit(s)

	s, err := m.ClickAnotherEmail(s)
	require.NoError(t, err)
	requireState(t, m.Initial(), s)
}

func TestNoTransitionsOutOfSubmittedError(t *testing.T) {
	m := testMachine()
	s, _ := m.EnterEmail(m.Initial(), "bad@")
	s, _ = m.Submit(s)
	require.Equal(t, SubmittedError, s.Kind)

	verbs := map[string]func(State) (State, error){
		"enterEmail":        func(s State) (State, error) { return m.EnterEmail(s, "x") },
		"selectGender":      func(s State) (State, error) { return m.SelectGender(s, Girl) },
		"submit":            m.Submit,
		"clickAnotherEmail": m.ClickAnotherEmail,
	}
	for verb, fn := range verbs {
		t.Run(verb, func(t *testing.T) {
			next, err := fn(s)
			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, verb, te.Verb)
			requireState(t, s, next)
		})
	}
}

func TestAnotherEmailOnlyFromSubmittedOk(t *testing.T) {
	m := testMachine()
	_, err := m.ClickAnotherEmail(m.Initial())
	var te *TransitionError
	assert.True(t, errors.As(err, &te))
}

func TestSubmitUnknownValue(t *testing.T) {
	m := testMachine()
	s, _ := m.EnterEmail(m.Initial(), "who@knows")
	_, err := m.Submit(s)
	var ue *UnclassifiedError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "who@knows", ue.Value)
}
