package buildid

import (
	"context"
	"errors"
	"testing"

	"github.com/ogulcanaydogan/gqlrecover/internal/fetch"
	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
)

const nextDataDoc = `<html><body><script id="__NEXT_DATA__" type="application/json">{"props":{},"page":"/","query":{},"buildId":"Xk3n_a9Ld2","isFallback":false}</script></body></html>`

func TestScan(t *testing.T) {
	id, err := Scan(nextDataDoc, DefaultMarker)
	if err != nil {
		t.Fatal(err)
	}
	if id != "Xk3n_a9Ld2" {
		t.Fatalf("build id = %q", id)
	}
}

func TestScanUsesFirstMarker(t *testing.T) {
	id, err := Scan(`buildId: "first" ... "buildId":"second"`, DefaultMarker)
	if err != nil {
		t.Fatal(err)
	}
	if id != "first" {
		t.Fatalf("build id = %q, want first", id)
	}
}

func TestScanErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"missing marker", `<html></html>`, stageerr.ErrNotFound},
		{"no colon", `"buildId"`, stageerr.ErrParse},
		{"no opening quote", `"buildId": 12`, stageerr.ErrParse},
		{"unterminated", `"buildId":"abc`, stageerr.ErrParse},
		{"empty", `"buildId":""`, stageerr.ErrParse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Scan(tc.doc, DefaultMarker)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestResolverFetchesRoot(t *testing.T) {
	var gotURL string
	getter := fetch.GetterFunc(func(_ context.Context, url string) (string, error) {
		gotURL = url
		return nextDataDoc, nil
	})
	id, err := NewResolver(getter, "https://example.test/", "", nil).Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gotURL != "https://example.test/" {
		t.Fatalf("fetched %q", gotURL)
	}
	if id != "Xk3n_a9Ld2" {
		t.Fatalf("build id = %q", id)
	}
}

func TestResolverPropagatesFetchError(t *testing.T) {
	getter := fetch.GetterFunc(func(_ context.Context, url string) (string, error) {
		return "", stageerr.New("fetch", stageerr.KindNetwork, "GET %s", url)
	})
	_, err := NewResolver(getter, "https://example.test/", "", nil).Resolve(context.Background())
	if !errors.Is(err, stageerr.ErrNetwork) {
		t.Fatalf("err = %v", err)
	}
}
