package engine

import "fmt"

// Canned replies, per supported language, for the outcomes that never
// reach the Answer Generator. Unknown languages fall back to English.

func smallTalkReply(language string) string {
	switch language {
	case "tr":
		return "Merhaba! Otelinizle ilgili her konuda yardımcı olabilirim. Ne öğrenmek istersiniz?"
	case "de":
		return "Hallo! Ich helfe Ihnen gerne mit allen Fragen rund um Ihr Hotel. Was möchten Sie wissen?"
	case "ru":
		return "Здравствуйте! Я с радостью отвечу на вопросы о вашем отеле. Что вы хотите узнать?"
	default:
		return "Hello! I'm happy to help with anything about your hotel. What would you like to know?"
	}
}

func askPropertyForQuestion(language string) string {
	switch language {
	case "tr":
		return "Elbette yardımcı olayım. Hangi otelde konaklıyorsunuz?"
	case "de":
		return "Gerne helfe ich Ihnen. In welchem Hotel wohnen Sie?"
	case "ru":
		return "С удовольствием помогу. В каком отеле вы остановились?"
	default:
		return "Happy to help! Which hotel are you staying at?"
	}
}

func noKnowledgeReply(language string) string {
	switch language {
	case "tr":
		return "Üzgünüm, bu konuda elimde bilgi yok. Dilerseniz sizi canlı destek ekibine bağlayabilirim."
	case "de":
		return "Leider habe ich dazu keine Informationen. Ich kann Sie aber gerne mit dem Live-Support verbinden."
	case "ru":
		return "К сожалению, у меня нет информации об этом. Могу соединить вас со службой поддержки."
	default:
		return "I'm sorry, I don't have that information. I can connect you with the live support team if you'd like."
	}
}

func locationDeferralReply(language string) string {
	switch language {
	case "tr":
		return "Yakındaki yerler için haritadaki konum özelliğini kullanabilirsiniz; size en yakın seçenekleri orada görebilirsiniz."
	case "de":
		return "Für Orte in der Umgebung nutzen Sie bitte die Kartenfunktion; dort sehen Sie die nächstgelegenen Optionen."
	case "ru":
		return "Для поиска ближайших мест воспользуйтесь картой — там показаны ближайшие варианты."
	default:
		return "For nearby places, please use the map feature; it shows the closest options around your hotel."
	}
}

func tryAgainReply(language string) string {
	switch language {
	case "tr":
		return "Üzgünüm, şu anda bir sorun oluştu. Lütfen birazdan tekrar deneyin."
	case "de":
		return "Entschuldigung, gerade ist etwas schiefgelaufen. Bitte versuchen Sie es gleich noch einmal."
	case "ru":
		return "Извините, произошла ошибка. Пожалуйста, попробуйте ещё раз чуть позже."
	default:
		return "I'm sorry, something went wrong. Please try again in a moment."
	}
}

func propertyGreeting(property, language string) string {
	switch language {
	case "tr":
		return fmt.Sprintf("Harika, %s! Size nasıl yardımcı olabilirim?", property)
	case "de":
		return fmt.Sprintf("Wunderbar, %s! Wie kann ich Ihnen helfen?", property)
	case "ru":
		return fmt.Sprintf("Отлично, %s! Чем могу помочь?", property)
	default:
		return fmt.Sprintf("Great, %s! How can I help you?", property)
	}
}
