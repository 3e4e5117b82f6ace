package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve_KnownCityWithoutExternalCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second)
	p := r.Resolve(context.Background(), "Av. Paulista 1000", "São Paulo", "SP")

	assert.Equal(t, Point{Lat: -23.5505, Lng: -46.6333}, p)
	//既知都市なら外部ジオコーダは呼ばない
	assert.Equal(t, 0, calls)
}

func TestResolve_AccentInsensitive(t *testing.T) {
	r := NewResolver("", time.Second)

	for _, city := range []string{"São Paulo", "sao paulo", "SAO PAULO", "  Goiânia "} {
		p := r.Resolve(context.Background(), "", city, "")
		assert.NotEqual(t, Point{}, p, "city %q", city)
	}

	assert.Equal(t,
		r.Resolve(context.Background(), "", "Brasília", ""),
		r.Resolve(context.Background(), "", "brasilia", ""),
	)
}

func TestResolve_ExternalLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), "Rua Teste")
		w.Write([]byte(`[{"lat":"-21.1767","lon":"-47.8208"}]`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second)
	p := r.Resolve(context.Background(), "Rua Teste 1", "Ribeirão Preto", "SP")

	assert.InDelta(t, -21.1767, p.Lat, 0.0001)
	assert.InDelta(t, -47.8208, p.Lng, 0.0001)
}

func TestResolve_CityTokenFallback(t *testing.T) {
	//外部ジオコーダが落ちていても、文字列中の都市名から引ける
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second)
	p := r.Resolve(context.Background(), "Av. Beira Mar 456, Fortaleza", "", "CE")

	assert.InDelta(t, -3.7319, p.Lat, 0.0001)
}

func TestResolve_DefaultCentroidNeverFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second)

	//どの段でも解決できない住所でも座標は返る
	p := r.Resolve(context.Background(), "???", "Vila Desconhecida", "ZZ")
	assert.Equal(t, DefaultCentroid, p)

	//全部空でも返る
	p = r.Resolve(context.Background(), "", "", "")
	assert.Equal(t, DefaultCentroid, p)
}

func TestResolve_MalformedExternalResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second)
	p := r.Resolve(context.Background(), "Rua X", "Cidade Y", "")
	assert.Equal(t, DefaultCentroid, p)
}

func TestRouter_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":5200.5,"duration":780.2,"geometry":{"coordinates":[[-46.63,-23.55],[-46.64,-23.56]]}}]}`))
	}))
	defer srv.Close()

	rt := NewRouter(srv.URL, time.Second)
	route, err := rt.Route(context.Background(), Point{Lat: -23.55, Lng: -46.63}, Point{Lat: -23.56, Lng: -46.64})
	assert.NoError(t, err)
	assert.InDelta(t, 5200.5, route.DistanceMeters, 0.01)
	assert.InDelta(t, 780.2, route.DurationSeconds, 0.01)
	assert.Len(t, route.Geometry, 2)
}

func TestRouter_NoRouteIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	rt := NewRouter(srv.URL, time.Second)
	_, err := rt.Route(context.Background(), Point{}, Point{})
	assert.Error(t, err)
}

func TestRouter_Unconfigured(t *testing.T) {
	rt := NewRouter("", time.Second)
	assert.False(t, rt.Enabled())
	_, err := rt.Route(context.Background(), Point{}, Point{})
	assert.Error(t, err)
}
