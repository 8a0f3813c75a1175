package proofer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idport/internal/idv/models"
)

func goodApplicant() models.Applicant {
	return models.NewApplicant(models.ProfileParams{
		FirstName: "Some",
		LastName:  "One",
		SSN:       "666-66-1234",
		DOB:       "19720329",
		Address1:  "123 Main St",
		City:      "Somewhere",
		State:     "KS",
		Zipcode:   "66044",
	})
}

func TestMockProofer(t *testing.T) {
	ctx := context.Background()

	t.Run("verifiable applicant passes", func(t *testing.T) {
		res, err := MockProofer{}.Resolve(ctx, goodApplicant())
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, []string{ReasonAllGood}, res.Reasons)
		assert.Empty(t, res.Codes)
	})

	t.Run("suspicious ssn rejected", func(t *testing.T) {
		a := goodApplicant()
		a.SSN = "666666666"
		res, err := MockProofer{}.Resolve(ctx, a)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, []string{ReasonSSNSuspicious}, res.Reasons)

		code, ok := res.DominantCode()
		require.True(t, ok)
		assert.Equal(t, models.ReasonSSNSuspicious, code)
	})

	t.Run("suspicious name rejected", func(t *testing.T) {
		a := goodApplicant()
		a.FirstName = "Bad"
		res, err := MockProofer{}.Resolve(ctx, a)
		require.NoError(t, err)
		assert.False(t, res.Success)

		code, _ := res.DominantCode()
		assert.Equal(t, models.ReasonNameSuspicious, code)
	})

	t.Run("suspicious zip on either address rejected", func(t *testing.T) {
		for _, mutate := range []func(*models.Applicant){
			func(a *models.Applicant) { a.Zipcode = "00000" },
			func(a *models.Applicant) { a.PrevZipcode = "00000" },
		} {
			a := goodApplicant()
			mutate(&a)
			res, err := MockProofer{}.Resolve(ctx, a)
			require.NoError(t, err)
			assert.False(t, res.Success)

			code, _ := res.DominantCode()
			assert.Equal(t, models.ReasonZipSuspicious, code)
		}
	})

	t.Run("injected error surfaces as-is", func(t *testing.T) {
		boom := NewVendorError(ErrorOutage, "down for maintenance", nil)
		_, err := MockProofer{Err: boom}.Resolve(ctx, goodApplicant())
		require.Error(t, err)
		assert.True(t, IsUnavailable(err))
	})

	t.Run("cancelled context is a timeout", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := MockProofer{Latency: time.Second}.Resolve(ctx, goodApplicant())
		require.Error(t, err)
		assert.Equal(t, ErrorTimeout, GetCategory(err))
	})
}

func TestHTTPProofer(t *testing.T) {
	ctx := context.Background()

	t.Run("maps vendor reason codes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/resolutions", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":false,"reasons":["The SSN was suspicious"],"reason_codes":["ssn.suspicious"]}`))
		}))
		defer srv.Close()

		res, err := NewHTTP(srv.URL, time.Second).Resolve(ctx, goodApplicant())
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, []models.ReasonCode{models.ReasonSSNSuspicious}, res.Codes)
	})

	t.Run("pass response needs no codes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"reasons":["Everything looks good"]}`))
		}))
		defer srv.Close()

		res, err := NewHTTP(srv.URL, time.Second).Resolve(ctx, goodApplicant())
		require.NoError(t, err)
		assert.True(t, res.Success)
	})

	t.Run("rejection with unknown codes is bad data, not a rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"reasons":["??"],"reason_codes":["galaxy.suspicious"]}`))
		}))
		defer srv.Close()

		_, err := NewHTTP(srv.URL, time.Second).Resolve(ctx, goodApplicant())
		require.Error(t, err)
		assert.Equal(t, ErrorBadData, GetCategory(err))
	})

	t.Run("5xx is an outage", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewHTTP(srv.URL, time.Second).Resolve(ctx, goodApplicant())
		require.Error(t, err)
		assert.Equal(t, ErrorOutage, GetCategory(err))
		assert.True(t, IsUnavailable(err))
	})

	t.Run("slow vendor is a timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		_, err := NewHTTP(srv.URL, 20*time.Millisecond).Resolve(ctx, goodApplicant())
		require.Error(t, err)
		assert.Equal(t, ErrorTimeout, GetCategory(err))
	})

	t.Run("malformed body is bad data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer srv.Close()

		_, err := NewHTTP(srv.URL, time.Second).Resolve(ctx, goodApplicant())
		require.Error(t, err)
		assert.Equal(t, ErrorBadData, GetCategory(err))
	})
}

func TestVendorError(t *testing.T) {
	t.Run("timeouts and outages are retryable", func(t *testing.T) {
		assert.True(t, NewVendorError(ErrorTimeout, "", nil).Retryable)
		assert.True(t, NewVendorError(ErrorOutage, "", nil).Retryable)
		assert.False(t, NewVendorError(ErrorBadData, "", nil).Retryable)
	})

	t.Run("category of plain errors is internal", func(t *testing.T) {
		assert.Equal(t, ErrorInternal, GetCategory(errors.New("boom")))
		assert.False(t, IsUnavailable(errors.New("boom")))
	})

	t.Run("unwraps underlying error", func(t *testing.T) {
		inner := errors.New("dial tcp: connection refused")
		err := NewVendorError(ErrorOutage, "vendor unreachable", inner)
		assert.True(t, errors.Is(err, inner))
	})
}
