package log

import "log/slog"

func RecipeID[T ~string](id T) slog.Attr {
	return slog.String("recipe_id", string(id))
}

func ItemID[T ~string](id T) slog.Attr {
	return slog.String("item_id", string(id))
}

func UserID[T ~string](id T) slog.Attr {
	return slog.String("user_id", string(id))
}

func Username(name string) slog.Attr {
	return slog.String("username", name)
}

func Sequence(name string) slog.Attr {
	return slog.String("sequence", name)
}

func Position(pos int) slog.Attr {
	return slog.Int("position", pos)
}

func Ingredient(name string) slog.Attr {
	return slog.String("ingredient", name)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
