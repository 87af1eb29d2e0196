package cli

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestShouldIgnoreEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   fsnotify.Event
		dataDir string
		want    bool
	}{
		{
			name:    "write outside data dir",
			event:   fsnotify.Event{Name: "/inbox/contract.pdf", Op: fsnotify.Write},
			dataDir: "/var/memostamp",
			want:    false,
		},
		{
			name:    "create outside data dir",
			event:   fsnotify.Event{Name: "/inbox/new.txt", Op: fsnotify.Create},
			dataDir: "/var/memostamp",
			want:    false,
		},
		{
			name:    "write inside data dir",
			event:   fsnotify.Event{Name: "/var/memostamp/state.db", Op: fsnotify.Write},
			dataDir: "/var/memostamp",
			want:    true,
		},
		{
			name:    "sibling with shared prefix",
			event:   fsnotify.Event{Name: "/var/memostamp-inbox/a.txt", Op: fsnotify.Write},
			dataDir: "/var/memostamp",
			want:    false,
		},
		{
			name:    "hidden file",
			event:   fsnotify.Event{Name: "/inbox/.contract.pdf.swp", Op: fsnotify.Write},
			dataDir: "/var/memostamp",
			want:    true,
		},
		{
			name:    "remove ignored",
			event:   fsnotify.Event{Name: "/inbox/old.txt", Op: fsnotify.Remove},
			dataDir: "/var/memostamp",
			want:    true,
		},
		{
			name:    "chmod ignored",
			event:   fsnotify.Event{Name: "/inbox/data.txt", Op: fsnotify.Chmod},
			dataDir: "/var/memostamp",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldIgnoreEvent(tt.event, tt.dataDir)
			if got != tt.want {
				t.Errorf("shouldIgnoreEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}
