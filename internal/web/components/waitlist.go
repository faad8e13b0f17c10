package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// WaitlistFormView is everything the signup form needs to render one state.
type WaitlistFormView struct {
	FormID       string
	Name         string
	Email        string
	Message      string
	FieldErrors  map[string]string
	Confirmed    bool
	Confirmation string
}

// WaitlistSection renders the confirmation once the form succeeded and the
// form itself otherwise.
func WaitlistSection(view WaitlistFormView) g.Node {
	if view.Confirmed {
		return WaitlistConfirmation(view.Confirmation)
	}
	return WaitlistForm(view)
}

func WaitlistForm(view WaitlistFormView) g.Node {
	return Section(
		Class("waitlist"),
		ID("waitlist"),
		H2(g.Text("Join the waitlist")),
		P(Class("lead"), g.Text("Be the first to know when Gatherly launches in your city.")),

		g.If(view.Message != "",
			Div(Class("alert alert-error"), Role("alert"), g.Text(view.Message)),
		),

		Form(
			Method("post"),
			Action("/waitlist"),
			Data("waitlist", "true"),
			Input(Type("hidden"), Name("form_id"), Value(view.FormID)),

			formField("name", "Name", "text", "Ada Lovelace", view.Name, view.FieldErrors["name"]),
			formField("email", "Email", "email", "ada@example.com", view.Email, view.FieldErrors["email"]),

			Button(Type("submit"), Class("btn"), g.Text("Join the waitlist")),
		),
	)
}

func WaitlistConfirmation(message string) g.Node {
	return Section(
		Class("waitlist"),
		ID("waitlist"),
		Div(Class("alert alert-success"), Role("status"), g.Text(message)),
		P(g.Text("Keep an eye on your inbox. We'll reach out with early access details.")),
	)
}

func formField(name, label, inputType, placeholder, value, fieldError string) g.Node {
	return Div(
		Class("field"),
		Label(For(name), g.Text(label)),
		Input(
			ID(name),
			Name(name),
			Type(inputType),
			Placeholder(placeholder),
			Value(value),
			Required(),
			MaxLength("255"),
			g.If(fieldError != "", Aria("invalid", "true")),
		),
		g.If(fieldError != "", Span(Class("field-error"), g.Text(fieldError))),
	)
}
