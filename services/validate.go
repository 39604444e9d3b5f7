package services

import "strings"

const minPhoneDigits = 10

// ValidPhone accepts ASCII digits only, at least ten of them.
func ValidPhone(phone string) bool {
	if len(phone) < minPhoneDigits {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	return true
}

func required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalidf("%s is required", field)
	}
	return value, nil
}

func checkPhone(phone string) (string, error) {
	phone, err := required("phone", phone)
	if err != nil {
		return "", err
	}
	if !ValidPhone(phone) {
		return "", invalidf("phone must be at least %d digits", minPhoneDigits)
	}
	return phone, nil
}
