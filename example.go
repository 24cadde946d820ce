package humpack

// Profile is a minimal registered type used by examples and tests: a
// linked record whose Next pointer may alias another profile or form a
// cycle. It shows the shape a Class triple takes for a plain struct.
type Profile struct {
	Name  string
	Score int64
	Next  *Profile
}

const ProfileType = "profile"

func RegisterProfile(reg *Registry) error {
	return reg.Register(Class{
		Name:        ProfileType,
		Alloc:       allocProfile,
		Serialize:   serializeProfile,
		Deserialize: deserializeProfile,
	})
}

func allocProfile() any { return &Profile{} }

func serializeProfile(obj any) ([]Field, error) {
	p := obj.(*Profile)
	fields := []Field{
		{Name: "name", Value: p.Name},
		{Name: "score", Value: p.Score},
	}
	// a typed nil pointer is not packable, so absent links are omitted
	if p.Next != nil {
		fields = append(fields, Field{Name: "next", Value: p.Next})
	}
	return fields, nil
}

func deserializeProfile(obj any, fields []Field) error {
	p := obj.(*Profile)
	for _, f := range fields {
		switch f.Name {
		case "name":
			p.Name, _ = f.Value.(string)
		case "score":
			p.Score, _ = f.Value.(int64)
		case "next":
			p.Next, _ = f.Value.(*Profile)
		}
	}
	return nil
}
