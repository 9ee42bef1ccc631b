package farmdesigner

// PointerTypePlant marks a point record as a plant
const PointerTypePlant = "Plant"

// Plant is a plant point in the farm designer
type Plant struct {
	ID           int64   `json:"id,omitempty"`
	PointerType  string  `json:"pointer_type"`
	Name         string  `json:"name,omitempty"`
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Z            int     `json:"z"`
	Radius       float64 `json:"radius"`
	OpenFarmSlug string  `json:"openfarm_slug,omitempty"`
}

// NewPlant builds a plant at (x, y)
func NewPlant(x, y int, radius float64, slug, name string) Plant {
	return Plant{
		PointerType:  PointerTypePlant,
		Name:         name,
		X:            x,
		Y:            y,
		Radius:       radius,
		OpenFarmSlug: slug,
	}
}

type celeryScript struct {
	Kind string          `json:"kind"`
	Args sendMessageArgs `json:"args"`
}

type sendMessageArgs struct {
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
}
