package formstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAcceptsContractObservations(t *testing.T) {
	for _, p := range []struct {
		state State
		obs   Observation
	}{
		{State{Kind: Empty}, Observation{InputDisplayed: true}},
		{State{Kind: Editing, Email: "a"}, Observation{InputDisplayed: true, InputValue: "a"}},
		{State{Kind: SubmittedOk, Email: "a"}, Observation{ResultDisplayed: true, ResetDisplayed: true}},
		{State{Kind: SubmittedError, Family: IncorrectEmail}, Observation{InputDisplayed: true, ErrorDisplayed: true}},
	} {
		t.Run(p.state.String(), func(t *testing.T) {
			assert.NoError(t, p.state.Check(p.obs))
		})
	}
}

func TestCheckReportsEveryProblem(t *testing.T) {
	s := State{Kind: SubmittedOk, Email: "a@b.c"}
	err := s.Check(Observation{InputDisplayed: true, ErrorDisplayed: true, ErrorText: "Некорректный email"})

	var ie *InvariantError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, []string{
		"email input should not be displayed",
		"result view should be displayed",
		"another-email link should be displayed",
		"error view should not be displayed",
	}, ie.Problems)
	assert.Contains(t, err.Error(), `SubmittedOk("a@b.c")`)
}

func TestCheckEmptyRequiresBlankInput(t *testing.T) {
	err := State{Kind: Empty}.Check(Observation{InputDisplayed: true, InputValue: "left over"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `email input should be empty but contains "left over"`)
}

func TestFamilyFor(t *testing.T) {
	assert.Equal(t, EnterEmail, FamilyFor(""))
	assert.Equal(t, IncorrectEmail, FamilyFor(" "))
	assert.Equal(t, IncorrectEmail, FamilyFor("a@mail.ru'); DROP TABLE Emails"))
	assert.Equal(t, "", NoError.Literal())
}
