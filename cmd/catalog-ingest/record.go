package main

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/logos-bookstore/internal/domain/catalog"
)

// record is one line of a catalog feed:
//
//	{"title":"Rayuela","author":{"first_name":"Julio","last_name":"Cortázar"},
//	 "category":"Novela","price":"349.00","stock":12}
type record struct {
	Title       string
	Author      catalog.Author
	Category    string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
	Featured    bool
}

func (r record) key() string {
	return catalog.Key(r.Author.FirstName, r.Author.LastName, r.Title)
}

func (r record) validate() error {
	switch {
	case r.Title == "":
		return errors.New("missing title")
	case r.Author.FirstName == "" && r.Author.LastName == "":
		return errors.New("missing author")
	case r.Price.IsNegative():
		return errors.Errorf("negative price %s", r.Price)
	case r.Stock < 0:
		return errors.Errorf("negative stock %d", r.Stock)
	}
	return nil
}

// decodeRecord parses a feed line. Unknown fields are skipped.
func decodeRecord(line []byte) (record, error) {
	var r record
	err := jx.DecodeBytes(line).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "title":
			r.Title, err = decodeString(d)
		case "author":
			err = decodeAuthor(d, &r.Author)
		case "category":
			r.Category, err = decodeString(d)
		case "description":
			r.Description, err = d.Str()
		case "price":
			r.Price, err = decodePrice(d)
		case "stock":
			r.Stock, err = d.Int()
		case "image_url":
			r.ImageURL, err = decodeString(d)
		case "featured":
			r.Featured, err = d.Bool()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return record{}, err
	}
	return r, r.validate()
}

func decodeAuthor(d *jx.Decoder, a *catalog.Author) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "first_name":
			a.FirstName, err = decodeString(d)
		case "last_name":
			a.LastName, err = decodeString(d)
		case "nationality":
			a.Nationality, err = decodeString(d)
		case "biography":
			a.Biography, err = d.Str()
		case "photo_url":
			a.PhotoURL, err = decodeString(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
}

func decodeString(d *jx.Decoder) (string, error) {
	s, err := d.Str()
	return strings.TrimSpace(s), err
}

// decodePrice accepts both "349.00" and 349.00.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = s
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = n.String()
	default:
		return decimal.Decimal{}, errors.Errorf("unexpected %s", d.Next())
	}
	return decimal.NewFromString(raw)
}
