package file

import (
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/allforyou/ordertext/internal/domain/order"
)

// Blob layout: {"<number>": {"orderNumber", "items": [{"name","price",
// "quantity"}], "dateCreated", "dateModified"}}. Prices are JSON strings to
// keep decimal values exact; dates are RFC 3339 in UTC. Keys are written
// sorted so repeated flushes of the same state produce identical bytes.

func encodeOrders(orders map[string]order.Order) []byte {
	keys := make([]string, 0, len(orders))
	for k := range orders {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var e jx.Encoder
	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(k)
		encodeOrder(&e, orders[k])
	}
	e.ObjEnd()
	return e.Bytes()
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.ObjStart()
	e.FieldStart("orderNumber")
	e.Str(o.Number)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("price")
		e.Str(it.Price.String())
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("dateCreated")
	e.Str(o.DateCreated.UTC().Format(time.RFC3339Nano))
	e.FieldStart("dateModified")
	e.Str(o.DateModified.UTC().Format(time.RFC3339Nano))
	e.ObjEnd()
}

func decodeOrders(data []byte) (map[string]order.Order, error) {
	orders := make(map[string]order.Order)
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		o, err := decodeOrder(d)
		if err != nil {
			return errors.Wrapf(err, "order %q", key)
		}
		if o.Number == "" {
			o.Number = key
		}
		orders[key] = o
		return nil
	}); err != nil {
		return nil, err
	}
	return orders, nil
}

func decodeOrder(d *jx.Decoder) (order.Order, error) {
	var o order.Order
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "orderNumber":
			s, err := d.Str()
			o.Number = s
			return err
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				it, err := decodeItem(d)
				if err != nil {
					return err
				}
				o.Items = append(o.Items, it)
				return nil
			})
		case "dateCreated":
			t, err := decodeTime(d)
			o.DateCreated = t
			return err
		case "dateModified":
			t, err := decodeTime(d)
			o.DateModified = t
			return err
		default:
			return d.Skip()
		}
	})
	return o, err
}

func decodeItem(d *jx.Decoder) (order.Item, error) {
	var it order.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			it.Name = s
			return err
		case "price":
			p, err := decodePrice(d)
			it.Price = p
			return err
		case "quantity":
			n, err := d.Int()
			it.Quantity = n
			return err
		default:
			return d.Skip()
		}
	})
	return it, err
}

// decodePrice accepts either the string form this codec writes or a bare
// JSON number, which the browser original produced.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	} else {
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = strings.Trim(n.String(), `"`)
	}

	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "price %q", raw)
	}
	return p, nil
}

func decodeTime(d *jx.Decoder) (time.Time, error) {
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "timestamp %q", s)
	}
	return t, nil
}
