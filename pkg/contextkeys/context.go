package contextkeys

// Кастомный тип ключа, чтобы избежать коллизий в context
type contextKey string

// DBContextKey - ключ, по которому в context хранится *gorm.DB (пул или транзакция)
const DBContextKey = contextKey("db")

// UserIDKey - ключ gin-контекста с ID аутентифицированного пользователя
const UserIDKey = "userID"

// CurrentUserKey - ключ gin-контекста, по которому Access Guard кладет
// загруженную запись пользователя (наружу она уходит только как dto.UserDTO)
const CurrentUserKey = "currentUser"
