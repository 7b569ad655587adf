package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgvidbot/internal/domain"
)

// sender is the slice of the Telegram client the outbound paths need. The
// concrete *tgbotapi.BotAPI satisfies it; tests supply a recorder.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// chatDelivery reports one request's outcome back into its chat. It owns the
// status message posted when the request was accepted: the status is edited
// as work progresses, deleted after a successful send, and carries the
// failure text otherwise. A zero statusMsgID means the status message never
// made it out; outcomes then go as plain replies.
type chatDelivery struct {
	api         sender
	capBytes    int64
	statusMsgID int
	logger      *slog.Logger
}

func (d *chatDelivery) DeliverVideo(ctx context.Context, req *domain.MediaRequest, art *domain.MediaArtifact) error {
	d.editStatus(req.ChatID, statusUploading)

	video := tgbotapi.NewVideo(req.ChatID, tgbotapi.FilePath(art.Path))
	video.Caption = deliveryCaption
	video.SupportsStreaming = true
	video.ReplyToMessageID = req.MessageID
	video.ReplyMarkup = helpKeyboard()
	video.Duration = art.Info.DurationSeconds()

	if _, err := d.api.Send(video); err != nil {
		return err
	}
	d.deleteStatus(req.ChatID)
	return nil
}

func (d *chatDelivery) DeliverAudio(ctx context.Context, req *domain.MediaRequest, art *domain.MediaArtifact) error {
	d.editStatus(req.ChatID, statusUploading)

	audio := tgbotapi.NewAudio(req.ChatID, tgbotapi.FilePath(art.Path))
	audio.Caption = deliveryCaption
	audio.ReplyToMessageID = req.MessageID
	audio.ReplyMarkup = helpKeyboard()
	audio.Duration = art.Info.DurationSeconds()

	if _, err := d.api.Send(audio); err != nil {
		return err
	}
	d.deleteStatus(req.ChatID)
	return nil
}

func (d *chatDelivery) ReportFailure(ctx context.Context, req *domain.MediaRequest, reason domain.FailureReason) {
	text := failureText(reason, d.capBytes)
	if d.statusMsgID != 0 {
		d.editStatus(req.ChatID, text)
		return
	}
	msg := tgbotapi.NewMessage(req.ChatID, text)
	msg.ReplyToMessageID = req.MessageID
	if _, err := d.api.Send(msg); err != nil {
		d.logger.Error("failure reply send failed", "error", err)
	}
}

// editStatus updates the in-progress status message. Errors are logged and
// swallowed; a broken status message must not change the request outcome.
func (d *chatDelivery) editStatus(chatID int64, text string) {
	if d.statusMsgID == 0 {
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, d.statusMsgID, text)
	if _, err := d.api.Send(edit); err != nil {
		d.logger.Warn("status edit failed", "message_id", d.statusMsgID, "error", err)
	}
}

func (d *chatDelivery) deleteStatus(chatID int64) {
	if d.statusMsgID == 0 {
		return
	}
	if _, err := d.api.Request(tgbotapi.NewDeleteMessage(chatID, d.statusMsgID)); err != nil {
		d.logger.Warn("status delete failed", "message_id", d.statusMsgID, "error", err)
	}
}
