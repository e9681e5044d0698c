package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tgcheck/internal/check"
)

// Console messages. The English text is the catalog key.
const (
	msgStarting         = "Starting session check..."
	msgAlreadyRunning   = "A check is already running."
	msgNoProxies        = "The proxy list %s is empty. Add proxies in host:port:username:password format."
	msgNoSessions       = "No session files found in %s."
	msgProxyFileCreated = "Created an empty proxy list at %s. Fill it in and run again."
	msgRunHeader        = "Run %s: %d sessions checked in %s"
	msgQuarantined      = "moved to quarantine"
	msgRetryAfter       = "retry after %d s"
	msgAllAuthorized    = "Check finished: all sessions are authorized."
	msgSomeFailed       = "Check finished: some sessions failed."
	msgNoRuns           = "No runs recorded."
	msgProxyCount       = "%d proxies loaded from %s"
	msgConfigCreated    = "Configuration initialized at %s"
	msgConfigUpdated    = "%s set to %s"
	msgKeyCreated       = "Identity written to %s\nRecipient: %s"
	msgEncrypted        = "Encrypted proxy list written to %s. Set proxies.file to use it."
	msgPassphrase       = "Proxy list passphrase: "
	msgAuthorized       = "authorized"
	msgUnauthorized     = "not authorized"
	msgRateLimited      = "rate limited"
	msgUnregistered     = "unregistered"
	msgConnFailed       = "connection failed"
	msgMalformed        = "malformed metadata"
	msgUnexpected       = "unexpected error"
)

var russian = map[string]string{
	msgStarting:         "Запуск проверки сессий...",
	msgAlreadyRunning:   "Проверка уже выполняется.",
	msgNoProxies:        "Список прокси %s пуст. Добавьте прокси в формате host:port:username:password.",
	msgNoSessions:       "В %s не найдено файлов сессий.",
	msgProxyFileCreated: "Создан пустой список прокси %s. Заполните его и запустите снова.",
	msgRunHeader:        "Запуск %s: проверено сессий: %d за %s",
	msgQuarantined:      "перемещена в карантин",
	msgRetryAfter:       "повтор через %d с",
	msgAllAuthorized:    "Проверка завершена: все сессии авторизованы.",
	msgSomeFailed:       "Проверка завершена: часть сессий не прошла проверку.",
	msgNoRuns:           "Запусков не найдено.",
	msgProxyCount:       "Загружено прокси: %d из %s",
	msgConfigCreated:    "Конфигурация создана: %s",
	msgConfigUpdated:    "%s установлено в %s",
	msgKeyCreated:       "Ключ записан в %s\nПолучатель: %s",
	msgEncrypted:        "Зашифрованный список прокси записан в %s. Укажите его в proxies.file.",
	msgPassphrase:       "Пароль списка прокси: ",
	msgAuthorized:       "авторизована",
	msgUnauthorized:     "не авторизована",
	msgRateLimited:      "ограничение запросов",
	msgUnregistered:     "не зарегистрирована",
	msgConnFailed:       "ошибка подключения",
	msgMalformed:        "повреждённые метаданные",
	msgUnexpected:       "непредвиденная ошибка",
}

var outcomeLabels = map[check.OutcomeKind]string{
	check.Authorized:          msgAuthorized,
	check.Unauthorized:        msgUnauthorized,
	check.RateLimited:         msgRateLimited,
	check.Unregistered:        msgUnregistered,
	check.ConnectionFailed:    msgConnFailed,
	check.MalformedCredential: msgMalformed,
	check.UnexpectedFailure:   msgUnexpected,
}

func init() {
	for key, text := range russian {
		if err := message.SetString(language.Russian, key, text); err != nil {
			panic(err)
		}
	}
}

// newPrinter returns a printer for the configured interface language,
// falling back to English.
func newPrinter(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// outcomeLabel returns the localized name of an outcome kind.
func outcomeLabel(p *message.Printer, kind check.OutcomeKind) string {
	if key, ok := outcomeLabels[kind]; ok {
		return p.Sprintf(key)
	}
	return kind.String()
}
