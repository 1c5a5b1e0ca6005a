package translate

var bundled = map[string]map[string]string{
	"es": {
		"Welcome to our quarterly review meeting.": "Bienvenidos a nuestra reunión de revisión trimestral.",
		"Thank you for joining us today.":          "Gracias por acompañarnos hoy.",
		"The results look very promising.":         "Los resultados parecen muy prometedores.",
		"Meeting in progress...":                   "Reunión en curso...",
		"Good morning, everyone.":                  "Buenos días a todos.",
		"Let's get started.":                       "Comencemos.",
		"Any questions?":                           "¿Alguna pregunta?",
		"Thank you.":                               "Gracias.",
		"Next slide, please.":                      "Siguiente diapositiva, por favor.",
		"Let's move on to the next item.":          "Pasemos al siguiente punto.",
	},
	"fr": {
		"Welcome to our quarterly review meeting.": "Bienvenue à notre réunion de bilan trimestriel.",
		"Thank you for joining us today.":          "Merci de vous joindre à nous aujourd'hui.",
		"The results look very promising.":         "Les résultats sont très prometteurs.",
		"Meeting in progress...":                   "Réunion en cours...",
		"Good morning, everyone.":                  "Bonjour à tous.",
		"Let's get started.":                       "Commençons.",
		"Any questions?":                           "Des questions ?",
		"Thank you.":                               "Merci.",
		"Next slide, please.":                      "Diapositive suivante, s'il vous plaît.",
		"Let's move on to the next item.":          "Passons au point suivant.",
	},
	"de": {
		"Welcome to our quarterly review meeting.": "Willkommen zu unserem vierteljährlichen Review-Meeting.",
		"Thank you for joining us today.":          "Danke, dass Sie heute dabei sind.",
		"The results look very promising.":         "Die Ergebnisse sehen sehr vielversprechend aus.",
		"Meeting in progress...":                   "Besprechung läuft...",
		"Good morning, everyone.":                  "Guten Morgen zusammen.",
		"Let's get started.":                       "Fangen wir an.",
		"Any questions?":                           "Gibt es Fragen?",
		"Thank you.":                               "Danke.",
		"Next slide, please.":                      "Nächste Folie, bitte.",
		"Let's move on to the next item.":          "Kommen wir zum nächsten Punkt.",
	},
	"zh": {
		"Welcome to our quarterly review meeting.": "欢迎参加我们的季度评审会议。",
		"Thank you for joining us today.":          "感谢大家今天的参与。",
		"The results look very promising.":         "结果看起来非常有希望。",
		"Meeting in progress...":                   "会议进行中……",
		"Good morning, everyone.":                  "大家早上好。",
		"Let's get started.":                       "我们开始吧。",
		"Any questions?":                           "有什么问题吗？",
		"Thank you.":                               "谢谢。",
		"Next slide, please.":                      "请翻到下一张幻灯片。",
		"Let's move on to the next item.":          "我们进入下一项议程。",
	},
}
