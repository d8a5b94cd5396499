package websocket

// Identity - кому принадлежит сессия. Либо известный пользователь, либо аноним.
// Нулевое значение - аноним.
type Identity struct {
	name  string
	known bool
}

func Known(name string) Identity {
	if name == "" {
		return Anonymous()
	}
	return Identity{name: name, known: true}
}

func Anonymous() Identity { return Identity{} }

// Name возвращает имя и true только для известного пользователя.
func (i Identity) Name() (string, bool) { return i.name, i.known }

func (i Identity) IsAnonymous() bool { return !i.known }

func (i Identity) String() string {
	if !i.known {
		return "anonymous"
	}
	return i.name
}
