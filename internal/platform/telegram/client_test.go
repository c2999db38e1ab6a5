package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken123/sendMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req sendMessageReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.ChatID != 42 || req.Text != "SOS" {
			t.Errorf("payload = %+v", req)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("token123", WithBaseURL(srv.URL+"/"))
	if err := c.SendMessage(context.Background(), 42, "SOS"); err != nil {
		t.Fatalf("SendMessage() unexpected error: %v", err)
	}
}

func TestSendDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottok/sendDocument" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if got := r.FormValue("chat_id"); got != "-100" {
			t.Errorf("chat_id = %q", got)
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "report.pdf" || string(data) != "%PDF-1.4" {
			t.Errorf("file = %s %q", header.Filename, data)
		}
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	if err := c.SendDocument(context.Background(), -100, []byte("%PDF-1.4"), "report.pdf"); err != nil {
		t.Fatalf("SendDocument() unexpected error: %v", err)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	err := NewClient("tok", WithBaseURL(srv.URL)).SendMessage(context.Background(), 1, "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("SendMessage() error = %v, want API description", err)
	}
}
