package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// 経路計算の結果。GeometryはGeoJSON準拠の[lng,lat]列。
type Route struct {
	Geometry        [][]float64 `json:"geometry"`
	DistanceMeters  float64     `json:"distance_meters"`
	DurationSeconds float64     `json:"duration_seconds"`
}

// OSRM互換のルーティングAPIクライアント。
// 失敗時は呼び出し側がマーカーのみ表示に落とす前提なので、
// ここではエラーをそのまま返す。
type Router struct {
	baseURL string
	client  *http.Client
}

func NewRouter(baseURL string, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Router{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *Router) Enabled() bool {
	return r.baseURL != ""
}

func (r *Router) Route(ctx context.Context, from, to Point) (Route, error) {
	if !r.Enabled() {
		return Route{}, fmt.Errorf("router: not configured")
	}

	// OSRMは lng,lat の順
	u := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		r.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Route{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Route{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Route{}, fmt.Errorf("router status %d", resp.StatusCode)
	}

	var body struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
			Geometry struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Route{}, err
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return Route{}, fmt.Errorf("router: no route (code=%s)", body.Code)
	}

	rt := body.Routes[0]
	return Route{
		Geometry:        rt.Geometry.Coordinates,
		DistanceMeters:  rt.Distance,
		DurationSeconds: rt.Duration,
	}, nil
}
