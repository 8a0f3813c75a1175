package models

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() ProfileParams {
	return ProfileParams{
		FirstName: "Some",
		LastName:  "One",
		SSN:       "666-66-1234",
		DOB:       "19720329",
		Address1:  "123 Main St",
		City:      "Somewhere",
		State:     "KS",
		Zipcode:   "66044",
	}
}

func TestNewApplicant(t *testing.T) {
	t.Run("copies and normalizes fields", func(t *testing.T) {
		p := validParams()
		p.State = " ks "
		a := NewApplicant(p)

		assert.Equal(t, "Some", a.FirstName)
		assert.Equal(t, "One", a.LastName)
		assert.Equal(t, "666661234", a.SSN, "dashes stripped from SSN")
		assert.Equal(t, "KS", a.State)
		assert.Equal(t, "66044", a.Zipcode)
	})

	t.Run("parses compact DOB", func(t *testing.T) {
		a := NewApplicant(validParams())
		assert.Equal(t, time.Date(1972, 3, 29, 0, 0, 0, 0, time.UTC), a.DOB)
	})

	t.Run("parses dashed DOB", func(t *testing.T) {
		p := validParams()
		p.DOB = "1972-03-29"
		a := NewApplicant(p)
		assert.Equal(t, time.Date(1972, 3, 29, 0, 0, 0, 0, time.UTC), a.DOB)
	})

	t.Run("reports previous address presence", func(t *testing.T) {
		a := NewApplicant(validParams())
		assert.False(t, a.HasPrevAddress())

		p := validParams()
		p.PrevZipcode = "66045"
		a = NewApplicant(p)
		assert.True(t, a.HasPrevAddress())
	})
}

func TestResolutionDominantCode(t *testing.T) {
	t.Run("nil resolution has no code", func(t *testing.T) {
		var r *Resolution
		_, ok := r.DominantCode()
		assert.False(t, ok)
	})

	t.Run("first code wins", func(t *testing.T) {
		r := &Resolution{Codes: []ReasonCode{ReasonSSNSuspicious, ReasonZipSuspicious}}
		code, ok := r.DominantCode()
		require.True(t, ok)
		assert.Equal(t, ReasonSSNSuspicious, code)
	})
}

func TestSession(t *testing.T) {
	t.Run("reads zero values before first write", func(t *testing.T) {
		s := NewSession()
		assert.Nil(t, s.Applicant())
		assert.Nil(t, s.Resolution())
		assert.False(t, s.ProfileConfirmation())
	})

	t.Run("update replaces all fields", func(t *testing.T) {
		s := NewSession()
		p := validParams()
		a := NewApplicant(p)
		res := &Resolution{Success: true, Reasons: []string{"Everything looks good"}}

		s.Update(p, &a, true, res)

		assert.Equal(t, p, s.Params())
		assert.Equal(t, &a, s.Applicant())
		assert.True(t, s.ProfileConfirmation())
		assert.Equal(t, res, s.Resolution())
	})

	t.Run("snapshot and restore round-trip", func(t *testing.T) {
		s := NewSession()
		p := validParams()
		a := NewApplicant(p)
		s.Update(p, &a, true, &Resolution{Success: true})

		restored := NewSession()
		restored.Restore(s.Snapshot())

		assert.Equal(t, p, restored.Params())
		assert.True(t, restored.ProfileConfirmation())
	})

	t.Run("concurrent updates never expose partial state", func(t *testing.T) {
		s := NewSession()
		p := validParams()
		a := NewApplicant(p)

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				s.Update(p, &a, true, &Resolution{Success: true})
			}()
			go func() {
				defer wg.Done()
				// A reader must see confirmation and resolution move together.
				snap := s.Snapshot()
				if snap.ProfileConfirmation {
					assert.NotNil(t, snap.Resolution)
				}
			}()
		}
		wg.Wait()
	})
}
