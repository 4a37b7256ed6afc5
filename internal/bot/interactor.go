package bot

import (
	"github.com/bwmarrin/discordgo"
)

// interactor implements resolve.Interactor over the gateway session.
type interactor struct {
	session *discordgo.Session
}

func (it *interactor) Send(channelID, content string, components []discordgo.MessageComponent) (string, error) {
	msg, err := it.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    content,
		Components: components,
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (it *interactor) Edit(channelID, messageID string, components []discordgo.MessageComponent) error {
	_, err := it.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Components: &components,
	})
	return err
}

func (it *interactor) Update(ic *discordgo.Interaction, components []discordgo.MessageComponent) error {
	return it.session.InteractionRespond(ic, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Components: components,
		},
	})
}

func (it *interactor) Acknowledge(ic *discordgo.Interaction) error {
	return it.session.InteractionRespond(ic, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func (it *interactor) Whisper(ic *discordgo.Interaction, content string) error {
	return it.session.InteractionRespond(ic, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
