//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
	pacttest "github.com/Apurer/pawmatch/test/pact"
)

var (
	jsonContentType = matchers.Regex("application/json; charset=utf-8", `application\/json(?:;\s?charset=utf-8)?`)
	tokenCookie     = matchers.Regex("fetch-access-token="+pacttest.AccessToken, `.*fetch-access-token=[^;]+.*`)
)

func newPact(t *testing.T) *pactconsumer.V2HTTPMockProvider {
	t.Helper()
	pactlog.SetLogLevel("INFO")
	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)
	return pact
}

func newClient(t *testing.T, config pactconsumer.MockServerConfig) *fetchapi.Client {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	client, err := fetchapi.NewClient(fmt.Sprintf("http://%s:%d", host, config.Port), fetchapi.WithTimeout(10*time.Second))
	require.NoError(t, err)
	return client
}

// restoreToken seeds the cookie jar as if login had already happened.
func restoreToken(t *testing.T, client *fetchapi.Client) {
	require.NoError(t, client.Session().Restore([]*http.Cookie{{Name: "fetch-access-token", Value: pacttest.AccessToken}}))
}

func TestFetchDogsContract(t *testing.T) {
	pact := newPact(t)

	pact.AddInteraction().
		Given(pacttest.StateCredentialsAccepted).
		UponReceiving("a login request").
		WithRequest(http.MethodPost, "/auth/login", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"name":  matchers.Like(pacttest.LoginName),
				"email": matchers.Like(pacttest.LoginEmail),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Set-Cookie", matchers.S("fetch-access-token="+pacttest.AccessToken+"; Path=/; HttpOnly"))
		})

	pact.AddInteraction().
		Given(pacttest.StateDogsIndexed).
		UponReceiving("a filtered search").
		WithRequest(http.MethodGet, "/dogs/search", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", tokenCookie)
			b.Query("breeds", matchers.S("Beagle"))
			b.Query("sort", matchers.S("breed:asc"))
			b.Query("size", matchers.S("25"))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"resultIds": matchers.EachLike(pacttest.ExistingDogID, 1),
				"total":     matchers.Like(3),
				"next":      matchers.Like("/dogs/search?breeds=Beagle&size=25&from=25&sort=breed:asc"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateDogsIndexed).
		UponReceiving("a request for dog records").
		WithRequest(http.MethodPost, "/dogs", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", tokenCookie)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody([]string{pacttest.ExistingDogID})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			dog := pacttest.ExampleDogPayload()
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":       matchers.Like(dog["id"]),
				"img":      matchers.Like(dog["img"]),
				"name":     matchers.Like(dog["name"]),
				"age":      matchers.Like(dog["age"]),
				"zip_code": matchers.Term(dog["zip_code"].(string), `^\d{5}$`),
				"breed":    matchers.Like(dog["breed"]),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateDogsIndexed).
		UponReceiving("a match request").
		WithRequest(http.MethodPost, "/dogs/match", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", tokenCookie)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody([]string{pacttest.ExistingDogID, pacttest.MatchedDogID})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{"match": matchers.Like(pacttest.MatchedDogID)})
		})

	err := pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newClient(t, config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Login(ctx, fetchapi.LoginRequest{Name: pacttest.LoginName, Email: pacttest.LoginEmail}); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if len(client.Session().Export()) != 1 {
			return fmt.Errorf("expected the access token cookie to be stored")
		}

		sort, size := "breed:asc", 25
		page, err := client.Search(ctx, fetchapi.SearchParams{Breeds: []string{"Beagle"}, Sort: &sort, Size: &size})
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		if len(page.ResultIDs) == 0 || page.Next == nil {
			return fmt.Errorf("unexpected search page %+v", page)
		}

		dogs, err := client.FetchDogs(ctx, []string{pacttest.ExistingDogID})
		if err != nil {
			return fmt.Errorf("fetch dogs: %w", err)
		}
		if len(dogs) != 1 || dogs[0].ZipCode == "" {
			return fmt.Errorf("unexpected dogs %+v", dogs)
		}

		match, err := client.Match(ctx, []string{pacttest.ExistingDogID, pacttest.MatchedDogID})
		if err != nil {
			return fmt.Errorf("match: %w", err)
		}
		if match.Match != pacttest.MatchedDogID {
			return fmt.Errorf("expected match %s, got %s", pacttest.MatchedDogID, match.Match)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestFetchDogsContract_ExpiredSession(t *testing.T) {
	pact := newPact(t)

	pact.AddInteraction().
		Given(pacttest.StateSessionExpired).
		UponReceiving("a search with an expired token").
		WithRequest(http.MethodGet, "/dogs/search", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", tokenCookie)
			b.Query("sort", matchers.S("breed:asc"))
			b.Query("size", matchers.S("25"))
		}).
		WillRespondWith(http.StatusUnauthorized)

	err := pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newClient(t, config)
		restoreToken(t, client)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sort, size := "breed:asc", 25
		_, err := client.Search(ctx, fetchapi.SearchParams{Sort: &sort, Size: &size})
		apiErr, ok := fetchapi.AsAPIError(err)
		if !ok || !apiErr.SessionExpired() {
			return fmt.Errorf("expected a session expiry error, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}
