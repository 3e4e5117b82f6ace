package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// 全部外した時のフォールバック（サンパウロ中心）
var DefaultCentroid = Point{Lat: -23.5505, Lng: -46.6333}

// 主要都市のセントロイド。キーはアクセント除去＋小文字。
var cityCentroids = map[string]Point{
	"sao paulo":      {Lat: -23.5505, Lng: -46.6333},
	"rio de janeiro": {Lat: -22.9068, Lng: -43.1729},
	"belo horizonte": {Lat: -19.9167, Lng: -43.9345},
	"brasilia":       {Lat: -15.7939, Lng: -47.8828},
	"salvador":       {Lat: -12.9714, Lng: -38.5014},
	"fortaleza":      {Lat: -3.7319, Lng: -38.5267},
	"curitiba":       {Lat: -25.4284, Lng: -49.2733},
	"recife":         {Lat: -8.0476, Lng: -34.8770},
	"porto alegre":   {Lat: -30.0346, Lng: -51.2177},
	"manaus":         {Lat: -3.1190, Lng: -60.0217},
	"campinas":       {Lat: -22.9099, Lng: -47.0626},
	"goiania":        {Lat: -16.6869, Lng: -49.2648},
}

var cityTokenRe = regexp.MustCompile(`[\p{L}][\p{L} ]*[\p{L}]`)

// 住所文字列→座標の段階的リゾルバ。
//  1. 既知都市テーブル（アクセント非依存）
//  2. 外部ジオコーダ（短いタイムアウト付き）
//  3. 住所文字列から都市トークンを正規表現で抜いてテーブル再引き
//  4. 固定のデフォルトセントロイド
//
// どの段でも必ず座標を返す。ライダーの地図は「エラー画面」より
// 「多少ズレた地図」の方がいい、という割り切り。
type Resolver struct {
	baseURL string
	client  *http.Client
}

// baseURLが空なら外部照会はスキップする。
func NewResolver(baseURL string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *Resolver) Resolve(ctx context.Context, street, city, state string) Point {
	// 1. 都市名の直引き
	if p, ok := CityCentroid(city); ok {
		return p
	}

	// 2. 外部ジオコーダ
	full := joinAddress(street, city, state)
	if r.baseURL != "" && full != "" {
		if p, err := r.remoteLookup(ctx, full); err == nil {
			return p
		} else {
			log.Warn().Err(err).Str("address", full).Msg("geocoder lookup failed, falling back")
		}
	}

	// 3. 文字列から都市らしきトークンを拾って再引き
	for _, token := range cityTokenRe.FindAllString(full, -1) {
		if p, ok := CityCentroid(token); ok {
			return p
		}
	}

	// 4. 最後のフォールバック
	return DefaultCentroid
}

// CityCentroidは既知都市ならそのセントロイドを返す。
func CityCentroid(city string) (Point, bool) {
	p, ok := cityCentroids[normalizeCity(city)]
	return p, ok
}

func (r *Resolver) remoteLookup(ctx context.Context, address string) (Point, error) {
	u := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", r.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Point{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Point{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	// Nominatim形式：lat/lonは文字列で返る
	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Point{}, err
	}
	if len(results) == 0 {
		return Point{}, fmt.Errorf("geocoder: no result")
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, err
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: lat, Lng: lng}, nil
}

func joinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

// アクセントを外して小文字化（São Paulo → sao paulo）
func normalizeCity(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
