package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMuxRoutes(t *testing.T) {
	local := newTestLocal(t)
	mock := newMockS3()
	m := NewMux(local, mock)
	ctx := context.Background()

	writeString(t, m, "s3://corpus/a.wav", "remote")
	writeString(t, m, "b.wav", "local")

	if string(mock.objects["corpus/a.wav"]) != "remote" {
		t.Fatalf("s3 object = %q", mock.objects["corpus/a.wav"])
	}
	got, err := ReadFile(ctx, local, "b.wav")
	if err != nil || string(got) != "local" {
		t.Fatalf("local read = %q, %v", got, err)
	}
	got, err = ReadFile(ctx, m, "s3://corpus/a.wav")
	if err != nil || string(got) != "remote" {
		t.Fatalf("mux s3 read = %q, %v", got, err)
	}
}

func TestMuxWithoutS3Client(t *testing.T) {
	m := NewMux(newTestLocal(t), nil)
	_, err := m.Read(context.Background(), "s3://corpus/a.wav")
	if !errors.Is(err, ErrNoS3) {
		t.Fatalf("expected ErrNoS3, got %v", err)
	}
}

func TestMuxMalformedS3URI(t *testing.T) {
	m := NewMux(newTestLocal(t), newMockS3())
	_, err := m.Read(context.Background(), "s3:///a.wav")
	if !errors.Is(err, ErrMalformedS3URI) {
		t.Fatalf("expected ErrMalformedS3URI, got %v", err)
	}
}
