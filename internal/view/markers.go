package view

// ActiveClass is the class carried by the selected tab.
const ActiveClass = "active"

// ClassMarker toggles a class on an element.
type ClassMarker struct {
	El    *Element
	Class string
}

func (m ClassMarker) SetActive(active bool) {
	class := m.Class
	if class == "" {
		class = ActiveClass
	}
	if active {
		m.El.AddClass(class)
	} else {
		m.El.RemoveClass(class)
	}
}

// DisplayMarker shows or hides an element through its display style.
type DisplayMarker struct {
	El *Element
}

func (m DisplayMarker) SetActive(active bool) {
	if active {
		m.El.Show()
	} else {
		m.El.Hide()
	}
}
