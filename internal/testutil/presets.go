package testutil

import (
	"strconv"
	"time"
)

// WithPeople adds the standard seven-person dataset.
//
//	p1 Alice  30 red    active   Oslo
//	p2 Bob    25 blue   active   Bergen
//	p3 Ali    41 red    inactive Oslo
//	p4 Carol  35 green  active   Tromsø
//	p5 Dave   19 blue   pending  Bergen
//	p6 Alina  22 green  active   Oslo
//	p7 Eve    28 (none) inactive (none)
func (b *Builder) WithPeople() *Builder {
	day := func(month, d int) time.Time { return time.Date(2024, time.Month(month), d, 0, 0, 0, 0, time.UTC) }

	return b.
		WithRow("p1", Name("Alice"), Age(30), Color("red"), City("Oslo"), Joined(day(1, 15)), Tags("admin")).
		WithRow("p2", Name("Bob"), Age(25), Color("blue"), City("Bergen"), Joined(day(2, 3))).
		WithRow("p3", Name("Ali"), Age(41), Color("red"), Status("inactive"), City("Oslo"), Joined(day(3, 20))).
		WithRow("p4", Name("Carol"), Age(35), Color("green"), City("Tromsø"), Joined(day(5, 1)), Tags("admin", "ops")).
		WithRow("p5", Name("Dave"), Age(19), Color("blue"), Status("pending"), City("Bergen"), Joined(day(6, 12))).
		WithRow("p6", Name("Alina"), Age(22), Color("green"), City("Oslo"), Joined(day(8, 30))).
		WithRow("p7", Name("Eve"), Age(28), Status("inactive"), Joined(day(11, 9)))
}

// WithNumbered adds n rows named row-1..row-n with ages 1..n, for paging.
func (b *Builder) WithNumbered(n int) *Builder {
	for i := 1; i <= n; i++ {
		id := "row-" + strconv.Itoa(i)
		b.WithRow(id, Age(i))
	}
	return b
}

