package conversation

const (
	PromptName = "Привет! 👋 Давай добавим информацию о твоем питомце. Как его зовут?"

	PromptWeight = "Отлично! 🐾 Сколько весит твой питомец? (в килограммах)"

	PromptDates = "Теперь введи даты последних обработок в формате:\n" +
		"От блох и клещей: 01.06.2025\n" +
		"От глистов: 01.06.2025\n" +
		"Комплексная вакцинация: 01.06.2025\n" +
		"Можно пропустить те, которые не делались."

	PromptIntervals = "Укажи, как часто нужно повторять каждую обработку (в днях):\n" +
		"От блох и клещей: 30\n" +
		"От глистов: 90\n" +
		"Комплексная вакцинация: 365"

	ReplyBadDate     = "Пожалуйста, соблюдай формат даты дд.мм.гггг"
	ReplyBadInterval = "Неверный формат интервала, вводи число дней"
	ReplyNonPositive = "Интервал должен быть больше нуля"
	ReplyStoreFailed = "Не удалось сохранить данные, попробуй ещё раз."
)
