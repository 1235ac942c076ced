package bot

// Menu labels. Incoming text is matched against them exactly.
const (
	LabelList     = "📋 Показать задачи"
	LabelAdd      = "➕ Добавить задачу"
	LabelComplete = "✅ Выполнить задачу"
	LabelDelete   = "❌ Удалить задачу"
	LabelEdit     = "✏️ Редактировать задачу"
)

// Menu returns the labels in keyboard order.
func Menu() []string {
	return []string{LabelList, LabelAdd, LabelComplete, LabelDelete, LabelEdit}
}

const (
	cmdStart = "/start"
	cmdHelp  = "/help"

	markDone    = "✔️"
	markPending = "❌"
)

const (
	replyGreeting = "Привет! Я помогу вести список задач. Выберите действие в меню."

	promptAdd      = "Введите текст задачи:"
	promptComplete = "Введите номер задачи, которую нужно выполнить:"
	promptDelete   = "Введите номер задачи, которую нужно удалить:"
	promptEdit     = "Введите номер задачи, которую нужно изменить:"
	promptEditText = "Введите новый текст задачи:"

	replyEmptyText     = "Текст задачи не может быть пустым. Попробуйте ещё раз:"
	replyNotANumber    = "Пожалуйста, введите номер задачи цифрами:"
	replyInvalidNumber = "Неверный номер задачи."
	replyNotFound      = "Задача не найдена."
	replyNoTasks       = "У вас нет задач."
	replyListHeader    = "Ваши задачи:"

	replyAdded            = "Задача добавлена: %s"
	replyCompleted        = "Задача «%s» отмечена как выполненная."
	replyAlreadyCompleted = "Задача «%s» уже выполнена."
	replyDeleted          = "Задача «%s» удалена."
	replyEdited           = "Задача изменена: %s"
)
