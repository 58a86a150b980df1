package router

import kit "dogcare/internal/transport"

const (
	helpText = "/start — начать настройку питомца\n" +
		"/pet — показать данные питомца\n" +
		"/update — изменить данные питомца\n" +
		"/delete — удалить данные питомца\n" +
		"/help — справка по командам"

	noPetText   = "Пока что у тебя нет добавленного питомца. Напиши /start, чтобы добавить его 🐾"
	deletedText = "Данные питомца удалены."
	noDataText  = "Нет данных о питомце."
	failureText = "Что-то пошло не так, попробуй ещё раз позже."
)

// Commands is the bot command menu.
func Commands() []kit.BotCommand {
	return []kit.BotCommand{
		{Command: "start", Description: "Начать настройку питомца"},
		{Command: "pet", Description: "Показать данные питомца"},
		{Command: "update", Description: "Обновить данные питомца"},
		{Command: "delete", Description: "Удалить данные питомца"},
		{Command: "help", Description: "Справка по командам"},
	}
}
