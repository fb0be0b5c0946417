package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/reactivities/activity"
)

var quiz = activity.Activity{
	ID:          "a1",
	Title:       "Pub quiz",
	Description: "Weekly quiz",
	Category:    "drinks",
	Date:        "2024-05-01T19:30:00.1234567",
	City:        "London",
	Venue:       "The Crown",
}

func TestNew_Defaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = New("http://api.example.com/api/", WithTimeout(time.Second))
	assert.Equal(t, "http://api.example.com/api", c.BaseURL())
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}

func TestList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/activities", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"a1","title":"Pub quiz","description":"Weekly quiz","category":"drinks","date":"2024-05-01T19:30:00.1234567","city":"London","venue":"The Crown"}]`))
	}))
	defer ts.Close()

	client := New(ts.URL + "/api")
	activities, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, quiz, activities[0])
}

func TestDetails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/activities/a1", r.URL.Path)
		json.NewEncoder(w).Encode(quiz)
	}))
	defer ts.Close()

	a, err := New(ts.URL + "/api").Details(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, quiz, a)
}

func TestCreate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/activities", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got activity.Activity
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, quiz, got)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	require.NoError(t, New(ts.URL+"/api").Create(context.Background(), quiz))
}

func TestUpdate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/activities/a1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	require.NoError(t, New(ts.URL+"/api").Update(context.Background(), quiz))
}

func TestDelete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/activities/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	require.NoError(t, New(ts.URL+"/api").Delete(context.Background(), "a/b"))
}

func TestWithToken(t *testing.T) {
	var gotAuth []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	_, err := New(ts.URL, WithToken("abc")).List(context.Background())
	require.NoError(t, err)
	_, err = New(ts.URL).List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer abc", ""}, gotAuth)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "no such activity", http.StatusNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := New(ts.URL).List(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRequestFailed), "error should wrap ErrRequestFailed: %v", err)

			var statusErr *StatusError
			if tt.wantStatus != 0 {
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
			} else {
				assert.False(t, errors.As(err, &statusErr))
			}
		})
	}
}

func TestStatusError_Body(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "title is required", http.StatusBadRequest)
	}))
	defer ts.Close()

	err := New(ts.URL).Create(context.Background(), activity.Activity{ID: "x"})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.MethodPost, statusErr.Method)
	assert.Equal(t, "/activities", statusErr.Path)
	assert.Equal(t, "title is required", statusErr.Body)
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	err := New(url).Delete(context.Background(), "a1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestContextCancelled(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer ts.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ts.URL).List(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.True(t, errors.Is(err, context.Canceled))
}
