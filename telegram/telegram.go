package telegram

import (
	"fmt"
	"log"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"stylistapi/models"
)

var usernames string = os.Getenv("TG_ADMINS") //separated by comma from env

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

func isAdmin(userName string) bool {
	for _, admin := range strings.Split(usernames, ",") {
		if admin != "" && admin == userName {
			return true
		}
	}
	return false
}

func statsMessage(db *gorm.DB) string {
	var userCount int64
	var itemCount int64
	var processedCount int64
	var failedCount int64
	db.Model(&models.UserAccount{}).Count(&userCount)
	db.Model(&models.WardrobeItem{}).Count(&itemCount)
	db.Model(&models.WardrobeItem{}).Where("processing_status = ?", "completed").Count(&processedCount)
	db.Model(&models.WardrobeItem{}).Where("processing_status = ?", "failed").Count(&failedCount)

	sb := strings.Builder{}
	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("Users:           %d\n", userCount))
	sb.WriteString(fmt.Sprintf("Wardrobe items:  %d\n", itemCount))
	sb.WriteString(fmt.Sprintf("  processed:     %d\n", processedCount))
	sb.WriteString(fmt.Sprintf("  failed:        %d\n", failedCount))
	sb.WriteString("```")
	return sb.String()
}

// RunOpsBot is a small admin bot for watching the service from a phone.
func RunOpsBot(e *echo.Echo, db *gorm.DB) {

	if usernames == "" {
		usernames = "formality8765"
	}
	bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
	if err != nil {
		println("Error tg bot init")
		log.Panic(err)
	}
	bot.Debug = true

	log.Printf("Authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)
		if !isAdmin(update.Message.From.UserName) {
			continue
		}

		switch update.Message.Command() {
		case "start":
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Commands:\n/stats - user and wardrobe counters")
			bot.Send(msg)
		case "stats":
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, statsMessage(db))
			msg.ParseMode = "markdown"
			bot.Send(msg)
		}
	}

}
