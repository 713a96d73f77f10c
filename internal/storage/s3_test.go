// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewWithoutCredentials(t *testing.T) {
	c, err := New("", "fsn1", "", "", "bucket", "")
	if err != nil || c != nil {
		t.Errorf("New() without endpoint = %v, %v; want nil, nil", c, err)
	}
	if _, err := New("https://s3.example.com", "fsn1", "ak", "sk", "", ""); err == nil {
		t.Error("New() without bucket should fail")
	}
}

func TestFileURLAndKeyFromURL(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		wantURL   string
	}{
		{"path style", "", "https://s3.example.com/media/fields/book/cover/a.png"},
		{"public url", "https://cdn.example.com/", "https://cdn.example.com/fields/book/cover/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New("https://s3.example.com/", "fsn1", "ak", "sk", "media", tt.publicURL)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			url := c.FileURL("fields/book/cover/a.png")
			if url != tt.wantURL {
				t.Errorf("FileURL() = %q, want %q", url, tt.wantURL)
			}
			key, ok := c.KeyFromURL(url)
			if !ok || key != "fields/book/cover/a.png" {
				t.Errorf("KeyFromURL(%q) = %q, %v", url, key, ok)
			}
			if _, ok := c.KeyFromURL("https://elsewhere.example.com/a.png"); ok {
				t.Error("foreign URL should not match")
			}
		})
	}
}

func TestImageKey(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	want := "fields/book/cover/11111111-2222-3333-4444-555555555555.png"
	if got := ImageKey("book", "cover", id, ".png"); got != want {
		t.Errorf("ImageKey() = %q, want %q", got, want)
	}
}

func TestSniffImage(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		wantCT string
		wantOK bool
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "image/png", true},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), "image/gif", true},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF"), "image/jpeg", true},
		{"html", []byte("<html><body>hi</body></html>"), "text/html; charset=utf-8", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, _, ok := SniffImage(tt.data)
			if ct != tt.wantCT || ok != tt.wantOK {
				t.Errorf("SniffImage() = %q, %v; want %q, %v", ct, ok, tt.wantCT, tt.wantOK)
			}
		})
	}
}
