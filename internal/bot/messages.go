package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgvidbot/internal/domain"
)

// User-facing texts. The size figures are filled in from the configured
// delivery cap so the wording stays honest if the cap changes.
const (
	greetingTemplate = "👋 <b>Привет!</b>\n\n" +
		"Я бот для скачивания видео с YouTube, TikTok, VK, OK и других сервисов.\n" +
		"Просто отправь мне <b>ссылку на видео</b>, а я скачаю и пришлю файл 📥\n\n" +
		"Максимальный размер отправляемого файла: <b>%d МБ</b>.\n"

	helpText = "📘 <b>Как пользоваться ботом</b>\n\n" +
		"1. Скопируй ссылку на видео (YouTube, TikTok, VK, OK и др.).\n" +
		"2. Отправь эту ссылку боту.\n" +
		"3. Дождись, пока я скачаю и подготовлю файл.\n" +
		"4. Полученное видео придёт как файл-документ, который можно сохранить на телефон."

	statusDownloading = "Скачиваю..."
	statusUploading   = "Отправляю файл..."

	deliveryCaption = "Готово! 🎬 Ваше видеофайл.\nНажми на него, чтобы скачать или сохранить."

	failureGenericText = "Произошла ошибка при скачивании или обработке видео."

	failureSizeTemplate = "Не удалось подготовить видео: файл больше %d МБ даже после сжатия."

	failureBotCheckText = "Источник попросил подтвердить, что запрос делает не бот. " +
		"Обычно так бывает, когда IP сервера попадает под проверку. " +
		"Попробуйте ещё раз позже или пришлите другую ссылку."

	helpButtonLabel = "📚 Помощь"
	helpCallback    = "help"
)

func greetingText(capBytes int64) string {
	return fmt.Sprintf(greetingTemplate, capBytes>>20)
}

// failureText maps a failure reason onto the message shown to the user.
func failureText(reason domain.FailureReason, capBytes int64) string {
	switch reason {
	case domain.ReasonBotCheck:
		return failureBotCheckText
	case domain.ReasonTooLarge:
		return fmt.Sprintf(failureSizeTemplate, capBytes>>20)
	default:
		return failureGenericText
	}
}

// helpKeyboard is attached to the greeting and to every delivered file.
func helpKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(helpButtonLabel, helpCallback),
		),
	)
}
