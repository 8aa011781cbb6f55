package spauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		SiteURL:      "https://contoso.sharepoint.com/sites/test",
		ClientID:     "client-id",
		ClientSecret: "secret",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing site URL", func(c *Config) { c.SiteURL = "" }},
		{"missing client ID", func(c *Config) { c.ClientID = "" }},
		{"missing client secret", func(c *Config) { c.ClientSecret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewClient_RequiresCompleteConfig(t *testing.T) {
	_, err := NewClient(Config{SiteURL: "https://contoso.sharepoint.com"})
	assert.Error(t, err)

	client, err := NewClient(Config{
		SiteURL:      "https://contoso.sharepoint.com/sites/test",
		ClientID:     "client-id",
		ClientSecret: "secret",
	})
	require.NoError(t, err)
	assert.NotNil(t, client.AuthCnfg)
	assert.Equal(t, "https://contoso.sharepoint.com/sites/test", client.AuthCnfg.GetSiteURL())
}

func TestGraphConfig_Validate(t *testing.T) {
	valid := GraphConfig{
		Tenant:        "contoso.onmicrosoft.com",
		ApplicationID: "app-id",
		ClientSecret:  "secret",
	}
	assert.NoError(t, valid.Validate())
	assert.Error(t, GraphConfig{Tenant: "t", ApplicationID: "a"}.Validate())
}

func TestNewGraphTokenSource_ExchangesClientCredentials(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Equal(t, "https://graph.microsoft.com/.default", r.FormValue("scope"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"graph-token","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)

	src, err := NewGraphTokenSource(context.Background(), GraphConfig{
		Tenant:        "contoso.onmicrosoft.com",
		ApplicationID: "app-id",
		ClientSecret:  "secret",
		AuthorityURL:  srv.URL,
	})
	require.NoError(t, err)

	token, err := src.Token()

	require.NoError(t, err)
	assert.Equal(t, "graph-token", token)
	assert.Equal(t, "/contoso.onmicrosoft.com/oauth2/v2.0/token", gotPath)
}

func TestNewGraphTokenSource_RejectsIncompleteConfig(t *testing.T) {
	_, err := NewGraphTokenSource(context.Background(), GraphConfig{Tenant: "t"})
	assert.Error(t, err)
}
