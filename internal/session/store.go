package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
)

// Store хранит состояние сессии: токен, пользователя и филиал.
// Это явный объект, передаваемый по ссылке всем, кому нужна сессия, а не
// синглтон уровня пакета. Состояние переживает перезапуск через JSON-файл:
// он читается при старте, пишется при входе и удаляется при выходе.
type Store struct {
	mu     sync.RWMutex
	path   string
	logger *log.Entry

	token  string
	user   domain.User
	branch string
	active bool
}

// fileState — формат сессионного файла на диске.
type fileState struct {
	Token  string `json:"token"`
	Branch string `json:"branch"`
	User   struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Branch string `json:"branch"`
	} `json:"user"`
}

// NewStore создаёт пустое хранилище сессии для заданного файла.
func NewStore(path string, logger *log.Entry) *Store {
	if logger == nil {
		logger = log.New().WithField("component", "session")
	}
	return &Store{path: path, logger: logger}
}

// Load восстанавливает сессию из файла. Отсутствие файла — не ошибка:
// клиент просто стартует без активной сессии.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		// Повреждённый файл не должен блокировать запуск: сессию придётся
		// открыть заново.
		s.logger.WithError(err).Warn("session file unreadable, ignoring")
		return nil
	}
	if state.Token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = state.Token
	s.branch = state.Branch
	s.user = domain.User{
		ID:     state.User.ID,
		Name:   state.User.Name,
		Email:  state.User.Email,
		Branch: state.User.Branch,
	}
	s.active = true

	s.logger.WithField("user", s.user.Email).Info("session restored")
	return nil
}

// Login сохраняет пользователя и токен и записывает сессию на диск.
func (s *Store) Login(user domain.User, token string) error {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.branch = user.Branch
	s.active = true

	state := fileState{Token: token, Branch: user.Branch}
	state.User.ID = user.ID
	state.User.Name = user.Name
	state.User.Email = user.Email
	state.User.Branch = user.Branch
	s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Logout очищает состояние и удаляет сессионный файл.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = domain.User{}
	s.branch = ""
	s.active = false
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Token возвращает bearer-токен активной сессии (пустая строка без сессии).
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User возвращает пользователя активной сессии.
func (s *Store) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.active
}

// Branch возвращает филиал активной сессии.
func (s *Store) Branch() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.branch
}

// Authenticated сообщает, есть ли активная сессия.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}
