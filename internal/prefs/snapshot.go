package prefs

import (
	"fmt"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Keys - все ключи, которые использует хранилище
var Keys = []string{KeyUser, KeyPlayCounts, KeyLastSection, KeyPlaylists, KeyRecent}

// Export сериализует все сохраненные значения в YAML для резервной копии
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]string, len(Keys))
	for _, key := range Keys {
		raw, ok, err := s.backend.Get(key)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения ключа %s: %w", key, err)
		}
		if ok {
			values[key] = raw
		}
	}

	content, err := yaml.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации настроек: %w", err)
	}
	return content, nil
}

// Import заменяет настройки содержимым резервной копии.
// Незнакомые ключи пропускаются, отсутствующие в копии удаляются.
// Все ключи записываются одной операцией хранилища.
func (s *Store) Import(content []byte) error {
	values := make(map[string]string)
	if err := yaml.Unmarshal(content, &values); err != nil {
		return fmt.Errorf("ошибка разбора резервной копии: %w", err)
	}
	if !lo.SomeBy(Keys, func(key string) bool {
		_, ok := values[key]
		return ok
	}) && len(values) > 0 {
		return fmt.Errorf("резервная копия не содержит настроек nayuta")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.ReplaceKeys(Keys, values); err != nil {
		return fmt.Errorf("ошибка записи настроек: %w", err)
	}
	s.logger.Info().Int("keys", len(values)).Msg("настройки восстановлены")
	return nil
}
