package fu

/*
Struct is an ordered set of named float values, metrics of a training subset for example
*/
type Struct struct {
	Names   []string
	Columns []float64
}

func MakeStruct(names []string, columns ...float64) Struct {
	return Struct{Names: names, Columns: columns}
}

/*
Pos returns index of the named value or -1 if there is no such name
*/
func (s Struct) Pos(name string) int {
	for i, n := range s.Names {
		if n == name {
			return i
		}
	}
	return -1
}

/*
Float returns the named value or zero when it is absent
*/
func (s Struct) Float(name string) float64 {
	if j := s.Pos(name); j >= 0 {
		return s.Columns[j]
	}
	return 0
}
