package hamlet

import "reflect"

func reflectLength(value interface{}) int {
	return reflect.ValueOf(value).Len()
}
