package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
)

const DefaultLang = "en"

//go:embed locales/*.json
var localeFS embed.FS

var (
	messagesLock sync.RWMutex
	messages     = make(map[string]map[string]string)
	loadOnce     sync.Once
)

func load() {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return
	}
	messagesLock.Lock()
	defer messagesLock.Unlock()
	for _, entry := range entries {
		data, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			continue
		}
		table := make(map[string]string)
		if err := json.Unmarshal(data, &table); err != nil {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		if messages[lang] == nil {
			messages[lang] = make(map[string]string)
		}
		for code, msg := range table {
			messages[lang][code] = msg
		}
	}
}

// lookup tries the exact language, then any table sharing its primary subtag
// ("zh" matches "zh-CN"), then the default language.
func lookup(code, lang string) (string, bool) {
	messagesLock.RLock()
	defer messagesLock.RUnlock()

	if msg, ok := messages[lang][code]; ok {
		return msg, true
	}
	primary := strings.ToLower(strings.SplitN(lang, "-", 2)[0])
	for name, table := range messages {
		if strings.ToLower(strings.SplitN(name, "-", 2)[0]) == primary {
			if msg, ok := table[code]; ok {
				return msg, true
			}
		}
	}
	msg, ok := messages[DefaultLang][code]
	return msg, ok
}

// Translate returns the message for code in lang, or code itself when no
// table has it.
func Translate(code string, lang string, args ...interface{}) string {
	loadOnce.Do(load)
	msg, ok := lookup(code, lang)
	if !ok {
		return code
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
