package formatter

import (
	"encoding/json"

	"github.com/go-telegram/bot/models"

	appmodels "github.com/mixelka/stashbot/pkg/models"
)

// BuildClearKeyboard creates the confirm/cancel keyboard shown by /clear
func BuildClearKeyboard(userID int64) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{
				Text: "Delete everything",
				CallbackData: EncodeCallback(appmodels.CallbackData{
					Action: appmodels.CallbackClearConfirm,
					UserID: userID,
				}),
			},
			{
				Text: "Cancel",
				CallbackData: EncodeCallback(appmodels.CallbackData{
					Action: appmodels.CallbackClearCancel,
					UserID: userID,
				}),
			},
		}},
	}
}

// EncodeCallback encodes callback data to string
func EncodeCallback(data appmodels.CallbackData) string {
	b, _ := json.Marshal(data)
	return string(b)
}

// DecodeCallback decodes callback data from string
func DecodeCallback(data string) (appmodels.CallbackData, error) {
	var cb appmodels.CallbackData
	err := json.Unmarshal([]byte(data), &cb)
	return cb, err
}
