package capi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsOrder(t *testing.T) {
	p := NewParams("token", "T1", "name", "Acme", "companies", 2, "enabled", true, "note", nil)
	p.Set("name", "Acme BV")
	assert.Equal(t, []string{"token", "name", "companies", "enabled", "note"}, p.Keys())
	assert.Equal(t, 5, p.Len())

	body, err := p.JSON()
	require.NoError(t, err)
	assert.Equal(t, `{"token":"T1","name":"Acme BV","companies":2,"enabled":true,"note":null}`, string(body))

	p.Del("companies")
	assert.False(t, p.Has("companies"))
	assert.Equal(t, []string{"token", "name", "enabled", "note"}, p.Keys())
}

func TestParamsValues(t *testing.T) {
	p := NewParams("domain", "example.com", "enabled", false, "months", 3)
	v := p.Values()
	assert.Equal(t, "example.com", v.Get("domain"))
	assert.Equal(t, "false", v.Get("enabled"))
	assert.Equal(t, "3", v.Get("months"))
}

func TestParamsJSONKeysWithPathSyntax(t *testing.T) {
	p := NewParams("a.b", 1, "c", "x")
	body, err := p.JSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a.b":1,"c":"x"}`, string(body))
}

func TestParamsMasksSecrets(t *testing.T) {
	p := NewParams("username", "user1", "password", "pass1", "token", "T1")
	s := p.String()
	assert.Equal(t, "username=user1 password=*** token=***", s)
	assert.NotContains(t, s, "pass1")
}

func TestParamsCloneAndNil(t *testing.T) {
	p := NewParams("a", 1)
	c := p.Clone()
	c.Set("b", 2)
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 2, c.Len())

	var nilParams *Params
	assert.Equal(t, 0, nilParams.Len())
	assert.Nil(t, nilParams.Keys())
	body, err := nilParams.JSON()
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(body))
	assert.Empty(t, nilParams.Values())
}

func TestEndpointCatalog(t *testing.T) {
	e, ok := LookupEndpoint("/account/discount/")
	require.True(t, ok)
	assert.True(t, e.Allows(DELETE))
	assert.False(t, e.Allows(GET))

	assert.False(t, requiresToken(PathURL))
	assert.False(t, requiresToken(PathPrice))
	assert.False(t, requiresToken(PathAuthenticate))
	assert.True(t, requiresToken(PathAccount))
	assert.True(t, requiresToken("something/else"))

	assert.Equal(t, "account/price", SymbolicPath("account.price"))
	assert.Equal(t, "service", SymbolicPath("service"))
	assert.Len(t, Endpoints(), 14)
	assert.Equal(t, PathAccount, Endpoints()[0].Path)
}
