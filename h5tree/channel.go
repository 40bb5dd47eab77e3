package h5tree

import "github.com/robert-malhotra/go-h5tree/storage"

// ChannelLocation is one record of an EEG channel-location table, the
// compound layout EEGLAB stores as chanlocs.
type ChannelLocation struct {
	Labels    string
	Type      string
	Theta     float64
	Radius    float64
	X         float64
	Y         float64
	Z         float64
	SphTheta  float64
	SphPhi    float64
	SphRadius float64
	Urchan    float64
	Ref       string
}

// channelFields lists the stored member names in storage order.
var channelFields = []storage.Field{
	{Name: "labels", Type: storage.FieldString},
	{Name: "type", Type: storage.FieldString},
	{Name: "theta", Type: storage.FieldFloat},
	{Name: "radius", Type: storage.FieldFloat},
	{Name: "X", Type: storage.FieldFloat},
	{Name: "Y", Type: storage.FieldFloat},
	{Name: "Z", Type: storage.FieldFloat},
	{Name: "sph_theta", Type: storage.FieldFloat},
	{Name: "sph_phi", Type: storage.FieldFloat},
	{Name: "sph_radius", Type: storage.FieldFloat},
	{Name: "urchan", Type: storage.FieldFloat},
	{Name: "ref", Type: storage.FieldString},
}

// isChannelTable reports whether fields contain every channel-location
// member with a compatible type. Extra members are allowed.
func isChannelTable(fields []storage.Field) bool {
	for _, want := range channelFields {
		got, ok := findField(fields, want.Name)
		if !ok {
			return false
		}
		if want.Type == storage.FieldString && got.Type != storage.FieldString {
			return false
		}
		if want.Type == storage.FieldFloat && got.Type != storage.FieldFloat && got.Type != storage.FieldInt {
			return false
		}
	}
	return true
}

func findField(fields []storage.Field, name string) (storage.Field, bool) {
	for _, f := range fields {
		if f.Is(name) {
			return f, true
		}
	}
	return storage.Field{}, false
}

// canonicalChannelFields replaces mangled member names in a channel table
// with the stored names they stand for.
func canonicalChannelFields(fields []storage.Field) []storage.Field {
	out := append([]storage.Field(nil), fields...)
	for i, f := range out {
		if !f.Mangled {
			continue
		}
		for _, want := range channelFields {
			if f.Is(want.Name) {
				out[i].Name = want.Name
				out[i].Mangled = false
				break
			}
		}
	}
	return out
}

func unpackChannels(rows []map[string]any) []ChannelLocation {
	out := make([]ChannelLocation, len(rows))
	for i, r := range rows {
		out[i] = ChannelLocation{
			Labels:    str(r["labels"]),
			Type:      str(r["type"]),
			Theta:     num(r["theta"]),
			Radius:    num(r["radius"]),
			X:         num(r["X"]),
			Y:         num(r["Y"]),
			Z:         num(r["Z"]),
			SphTheta:  num(r["sph_theta"]),
			SphPhi:    num(r["sph_phi"]),
			SphRadius: num(r["sph_radius"]),
			Urchan:    num(r["urchan"]),
			Ref:       str(r["ref"]),
		}
	}
	return out
}

func packChannels(locs []ChannelLocation) []map[string]any {
	rows := make([]map[string]any, len(locs))
	for i, c := range locs {
		rows[i] = map[string]any{
			"labels":     c.Labels,
			"type":       c.Type,
			"theta":      c.Theta,
			"radius":     c.Radius,
			"X":          c.X,
			"Y":          c.Y,
			"Z":          c.Z,
			"sph_theta":  c.SphTheta,
			"sph_phi":    c.SphPhi,
			"sph_radius": c.SphRadius,
			"urchan":     c.Urchan,
			"ref":        c.Ref,
		}
	}
	return rows
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return 0
}
