package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание изображения
	StateImageLoaded   UserState = "image_loaded"   // Изображение загружено
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// User представляет пользователя бота
type User struct {
	ID       int64     // Telegram User ID
	ChatID   int64     // Telegram Chat ID
	State    UserState // Текущее состояние пользователя
	Operator Operator  // Выбранный оператор, пусто если не выбран
	Controls Controls  // Значения параметров выбранного оператора
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// Select запоминает оператор и его параметры
func (u *User) Select(op Operator, controls Controls) {
	u.Operator = op
	u.Controls = controls.Clone()
}

// HasOperator сообщает, выбран ли оператор
func (u *User) HasOperator() bool {
	return u.Operator != ""
}
