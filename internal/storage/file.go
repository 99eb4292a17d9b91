package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	logx "timezonebot/pkg/logx"
)

// fileStore is a dependency-free persistence backend backed by a single
// JSON snapshot. Mutations are rare (a user changing their zone), so each
// write rewrites the snapshot atomically (tmp + rename).
type fileStore struct {
	log  logx.Logger
	path string

	mu     sync.Mutex
	closed bool
	state  fileState
}

type fileState struct {
	// Keys are "<chat_id>:<user_id>" for per-user maps, "<chat_id>" for time messages.
	HomeZones    map[string]fileHomeZone `json:"home_zones"`
	ZoneHints    map[string]string       `json:"zone_hints"`
	TimeMessages map[string]fileTimeMsg  `json:"time_messages"`
}

type fileHomeZone struct {
	Username  string    `json:"username,omitempty"`
	Zone      string    `json:"zone"`
	UpdatedAt time.Time `json:"updated_at"`
}

type fileTimeMsg struct {
	ThreadID  int       `json:"thread_id,omitempty"`
	MessageID int       `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	st := &fileStore{log: log, path: path, state: newFileState()}
	if err := st.load(); err != nil {
		return nil, err
	}
	return st, nil
}

func newFileState() fileState {
	return fileState{
		HomeZones:    map[string]fileHomeZone{},
		ZoneHints:    map[string]string{},
		TimeMessages: map[string]fileTimeMsg{},
	}
}

func (s *fileStore) load() error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	var st fileState
	if err := json.NewDecoder(f).Decode(&st); err != nil {
		// A corrupt snapshot should not brick the bot; start fresh but keep the
		// broken file aside for inspection.
		s.log.Warn("storage snapshot corrupt, starting empty", logx.String("path", s.path), logx.Err(err))
		_ = os.Rename(s.path, s.path+".corrupt")
		return nil
	}
	if st.HomeZones == nil {
		st.HomeZones = map[string]fileHomeZone{}
	}
	if st.ZoneHints == nil {
		st.ZoneHints = map[string]string{}
	}
	if st.TimeMessages == nil {
		st.TimeMessages = map[string]fileTimeMsg{}
	}
	s.state = st
	return nil
}

func (s *fileStore) persistLocked() error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.state); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func userKey(chatID, userID int64) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.FormatInt(userID, 10)
}

func chatKey(chatID int64) string { return strconv.FormatInt(chatID, 10) }

func (s *fileStore) GetHomeZone(ctx context.Context, chatID, userID int64) (HomeZone, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return HomeZone{}, false, ErrDisabled
	}
	rec, ok := s.state.HomeZones[userKey(chatID, userID)]
	if !ok {
		return HomeZone{}, false, nil
	}
	return HomeZone{
		ChatID:    chatID,
		UserID:    userID,
		Username:  rec.Username,
		Zone:      rec.Zone,
		UpdatedAt: rec.UpdatedAt,
	}, true, nil
}

func (s *fileStore) PutHomeZone(ctx context.Context, hz HomeZone) error {
	_ = ctx
	if hz.UpdatedAt.IsZero() {
		hz.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisabled
	}
	s.state.HomeZones[userKey(hz.ChatID, hz.UserID)] = fileHomeZone{
		Username:  hz.Username,
		Zone:      hz.Zone,
		UpdatedAt: hz.UpdatedAt,
	}
	return s.persistLocked()
}

func (s *fileStore) DeleteHomeZone(ctx context.Context, chatID, userID int64) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisabled
	}
	key := userKey(chatID, userID)
	if _, ok := s.state.HomeZones[key]; !ok {
		return nil
	}
	delete(s.state.HomeZones, key)
	return s.persistLocked()
}

func (s *fileStore) ListHomeZones(ctx context.Context, chatID int64) ([]HomeZone, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrDisabled
	}
	prefix := chatKey(chatID) + ":"
	var out []HomeZone
	for k, rec := range s.state.HomeZones {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		uid, err := strconv.ParseInt(k[len(prefix):], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, HomeZone{
			ChatID:    chatID,
			UserID:    uid,
			Username:  rec.Username,
			Zone:      rec.Zone,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *fileStore) GetZoneHint(ctx context.Context, chatID, userID int64) (string, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrDisabled
	}
	zone, ok := s.state.ZoneHints[userKey(chatID, userID)]
	return zone, ok, nil
}

func (s *fileStore) PutZoneHint(ctx context.Context, chatID, userID int64, zone string) error {
	_ = ctx
	if strings.TrimSpace(zone) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisabled
	}
	s.state.ZoneHints[userKey(chatID, userID)] = zone
	return s.persistLocked()
}

func (s *fileStore) GetTimeMessage(ctx context.Context, chatID int64) (TimeMessageRef, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return TimeMessageRef{}, false, ErrDisabled
	}
	rec, ok := s.state.TimeMessages[chatKey(chatID)]
	if !ok {
		return TimeMessageRef{}, false, nil
	}
	return TimeMessageRef{
		ChatID:    chatID,
		ThreadID:  rec.ThreadID,
		MessageID: rec.MessageID,
		CreatedAt: rec.CreatedAt,
	}, true, nil
}

func (s *fileStore) PutTimeMessage(ctx context.Context, ref TimeMessageRef) error {
	_ = ctx
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisabled
	}
	s.state.TimeMessages[chatKey(ref.ChatID)] = fileTimeMsg{
		ThreadID:  ref.ThreadID,
		MessageID: ref.MessageID,
		CreatedAt: ref.CreatedAt,
	}
	return s.persistLocked()
}

func (s *fileStore) DeleteTimeMessage(ctx context.Context, chatID int64) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisabled
	}
	key := chatKey(chatID)
	if _, ok := s.state.TimeMessages[key]; !ok {
		return nil
	}
	delete(s.state.TimeMessages, key)
	return s.persistLocked()
}

func (s *fileStore) ListTimeMessages(ctx context.Context) ([]TimeMessageRef, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrDisabled
	}
	var out []TimeMessageRef
	for k, rec := range s.state.TimeMessages {
		cid, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, TimeMessageRef{
			ChatID:    cid,
			ThreadID:  rec.ThreadID,
			MessageID: rec.MessageID,
			CreatedAt: rec.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}
